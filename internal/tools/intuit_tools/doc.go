// Package intuit_tools provides MCP tools for querying the Intuit GraphQL API.
//
// This package implements MCP (Model Context Protocol) tools that wrap the
// Intuit API client, letting AI assistants run GraphQL queries and mutations
// against QuickBooks data.
//
// # Available Tools
//
//   - intuit_execute_graphql: Execute a GraphQL query or mutation against the
//     Intuit API. Accepts a raw query string or a JSON object with "query" and
//     "variables" keys. The configured QuickBooks company ID is injected into
//     the variables automatically.
//
// # REST Fallback
//
// When a company-info query fails against the GraphQL endpoint and a company
// ID is configured, the tool retries via the QuickBooks v3 REST companyinfo
// endpoint and maps the response into the GraphQL result shape. Results
// produced this way carry a provenance note. Fallback failures never mask the
// original GraphQL error.
//
// # Authentication
//
// Credentials come from the environment (INTUIT_CLIENT_ID, INTUIT_CLIENT_SECRET,
// INTUIT_REFRESH_TOKEN). Access tokens are obtained through the refresh-token
// grant and cached until shortly before expiry.
package intuit_tools
