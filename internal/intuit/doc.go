// Package intuit provides a client for the Intuit/QuickBooks GraphQL API
// with a narrow REST fallback.
//
// The package covers:
//   - Credential configuration from environment variables with an
//     environment selector (sandbox or production)
//   - A cached token provider that exchanges a long-lived refresh token for
//     bearer tokens and reuses them until 60 seconds before expiry
//   - A GraphQL client that normalizes transport and status failures into
//     the GraphQL error envelope shape, so callers always receive a
//     well-formed JSON result
//   - Normalization of raw-vs-JSON-wrapped query input at the tool boundary
//   - A REST companyinfo fallback mapped into the GraphQL response shape
//
// Authentication uses the OAuth2 refresh-token grant against Intuit's
// bearer-token endpoint. The provider keeps a single process-wide token
// slot; tokens are never persisted and die with the process.
//
// Example usage:
//
//	config := intuit.ConfigFromEnv()
//	if err := config.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens := intuit.NewCachedTokenProvider(config)
//	client := intuit.NewClient(config, tokens)
//
//	result := client.Execute(ctx, "query { company { companyName } }", nil)
package intuit
