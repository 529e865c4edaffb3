package intuit_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/quickgraph/internal/instrumentation"
	"github.com/teemow/quickgraph/internal/intuit"
	"github.com/teemow/quickgraph/internal/server"
)

// newToolTestClient builds an Intuit client pointed at httptest doubles,
// with a pre-seeded token so no OAuth exchange happens.
func newToolTestClient(t *testing.T, graphqlURL, restBaseURL, realmID string) *intuit.Client {
	t.Helper()

	config := intuit.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RefreshToken: "test-refresh",
		Environment:  intuit.EnvironmentSandbox,
		RealmID:      realmID,
		GraphQLURL:   graphqlURL,
		RESTBaseURL:  restBaseURL,
	}

	tokens := intuit.NewCachedTokenProvider(config)
	tokens.Replace(&oauth2.Token{
		AccessToken: "test-access-token",
		Expiry:      time.Now().Add(time.Hour),
	})

	return intuit.NewClient(config, tokens)
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "intuit_execute_graphql"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected non-empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleExecuteGraphQL_Success(t *testing.T) {
	graphql := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-access-token" {
			t.Errorf("Authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"entities":{"nodes":[]}}}`))
	}))
	defer graphql.Close()

	client := newToolTestClient(t, graphql.URL, "", "")
	sc := server.NewServerContext(context.Background(), client)

	result, err := handleExecuteGraphQL(context.Background(), newRequest(map[string]interface{}{
		"query": "query { entities { nodes { id } } }",
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if _, ok := decoded["data"]; !ok {
		t.Error("result missing data key")
	}
}

func TestHandleExecuteGraphQL_MissingQuery(t *testing.T) {
	client := newToolTestClient(t, "http://unused.invalid", "", "")
	sc := server.NewServerContext(context.Background(), client)

	result, err := handleExecuteGraphQL(context.Background(), newRequest(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing query")
	}
}

func TestHandleExecuteGraphQL_NoClient(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil)

	result, err := handleExecuteGraphQL(context.Background(), newRequest(map[string]interface{}{
		"query": "query { x }",
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result when client is not configured")
	}
}

func TestHandleExecuteGraphQL_GraphQLErrorsReturnedInBand(t *testing.T) {
	graphql := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"Field 'bogus' doesn't exist"}]}`))
	}))
	defer graphql.Close()

	client := newToolTestClient(t, graphql.URL, "", "")
	sc := server.NewServerContext(context.Background(), client)

	result, err := handleExecuteGraphQL(context.Background(), newRequest(map[string]interface{}{
		"query": "query { bogus }",
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	// Remote GraphQL errors are data, not tool errors.
	if result.IsError {
		t.Error("GraphQL errors should be returned in-band, not as tool errors")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if _, ok := decoded["errors"]; !ok {
		t.Error("expected errors array to be relayed verbatim")
	}
}

func TestHandleExecuteGraphQL_WrappedQueryInput(t *testing.T) {
	var received struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	graphql := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer graphql.Close()

	client := newToolTestClient(t, graphql.URL, "", "")
	sc := server.NewServerContext(context.Background(), client)

	wrapped := `{"query": "query ($n: Int) { items(first: $n) { id } }", "variables": {"n": 5}}`
	_, err := handleExecuteGraphQL(context.Background(), newRequest(map[string]interface{}{
		"query": wrapped,
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if received.Query != "query ($n: Int) { items(first: $n) { id } }" {
		t.Errorf("forwarded query = %q, want unwrapped inner query", received.Query)
	}
	if received.Variables["n"] != float64(5) {
		t.Errorf("forwarded variables = %v, want wrapped variables", received.Variables)
	}
}

func TestHandleExecuteGraphQL_CompanyInfoFallback(t *testing.T) {
	graphql := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"query not supported"}]}`))
	}))
	defer graphql.Close()

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/company/12345/companyinfo/12345" {
			t.Errorf("unexpected REST path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"CompanyInfo":{"CompanyName":"Acme","LegalName":"Acme Inc"}}`))
	}))
	defer rest.Close()

	client := newToolTestClient(t, graphql.URL, rest.URL, "12345")
	sc := server.NewServerContext(context.Background(), client)

	ctx := instrumentation.ContextWithFallbackMarker(context.Background())
	result, err := handleExecuteGraphQL(ctx, newRequest(map[string]interface{}{
		"query": "query { company { companyName } }",
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}

	data, _ := decoded["data"].(map[string]interface{})
	company, _ := data["company"].(map[string]interface{})
	if company["companyName"] != "Acme" {
		t.Errorf("companyName = %v, want Acme", company["companyName"])
	}
	if note, _ := company["note"].(string); note == "" {
		t.Error("fallback result missing provenance note")
	}
	if !instrumentation.FallbackUsedFromContext(ctx) {
		t.Error("successful fallback should mark the invocation for audit logging")
	}
}

func TestHandleExecuteGraphQL_FallbackFailureKeepsOriginalError(t *testing.T) {
	graphql := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"original graphql failure"}]}`))
	}))
	defer graphql.Close()

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer rest.Close()

	client := newToolTestClient(t, graphql.URL, rest.URL, "12345")
	sc := server.NewServerContext(context.Background(), client)

	ctx := instrumentation.ContextWithFallbackMarker(context.Background())
	result, err := handleExecuteGraphQL(ctx, newRequest(map[string]interface{}{
		"query": "query { company { companyName } }",
	}), sc)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if instrumentation.FallbackUsedFromContext(ctx) {
		t.Error("failed fallback must not mark the invocation")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	errs, _ := decoded["errors"].([]interface{})
	if len(errs) != 1 {
		t.Fatalf("expected original error to be preserved, got %v", decoded)
	}
	first, _ := errs[0].(map[string]interface{})
	if first["message"] != "original graphql failure" {
		t.Errorf("error message = %v, want original graphql failure", first["message"])
	}
}

func TestShouldAttemptCompanyInfoFallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		realmID string
		want    bool
	}{
		{"company info query with realm", "query { company { companyName } }", "123", true},
		{"mixed case", "query { Company { CompanyName } }", "123", true},
		{"no realm configured", "query { company { companyName } }", "", false},
		{"unrelated query", "query { invoices { id } }", "123", false},
		{"company without companyName", "query { company { id } }", "123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldAttemptCompanyInfoFallback(tt.query, tt.realmID); got != tt.want {
				t.Errorf("shouldAttemptCompanyInfoFallback(%q, %q) = %v, want %v", tt.query, tt.realmID, got, tt.want)
			}
		})
	}
}

func TestRegisterIntuitTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil)

	s := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	if err := RegisterIntuitTools(s, sc); err != nil {
		t.Fatalf("RegisterIntuitTools() error = %v", err)
	}
}
