package intuit

import "encoding/json"

// Operation is the resolved form of the tool's query input: either a raw
// GraphQL document, or the query/variables unwrapped from a JSON-encoded
// request object. Resolution happens once at the tool boundary instead of
// a silent parse-and-fallback deeper in the call chain.
type Operation struct {
	// Query is the GraphQL document to execute
	Query string

	// Variables is the variables mapping, possibly nil
	Variables map[string]interface{}

	// Wrapped reports whether the input was a JSON object with a "query" key
	Wrapped bool
}

// ResolveOperation normalizes the tool's query argument. If the input parses
// as a JSON object containing a "query" key, the inner query is extracted and
// the wrapped variables are adopted only when the caller passed none.
// Any other input, including valid JSON without a "query" key, is treated as
// a raw GraphQL document unchanged.
func ResolveOperation(query string, variables map[string]interface{}) Operation {
	op := Operation{Query: query, Variables: variables}

	var wrapped map[string]interface{}
	if err := json.Unmarshal([]byte(query), &wrapped); err != nil {
		return op
	}

	inner, ok := wrapped["query"].(string)
	if !ok {
		return op
	}

	op.Query = inner
	op.Wrapped = true

	if op.Variables == nil {
		if vars, ok := wrapped["variables"].(map[string]interface{}); ok {
			op.Variables = vars
		}
	}

	return op
}
