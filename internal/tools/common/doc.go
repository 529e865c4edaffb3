// Package common provides shared utilities for MCP tool implementations.
// It wraps tool handlers with metrics recording and audit logging so that
// every registered tool reports invocations consistently.
package common
