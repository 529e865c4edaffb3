package intuit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teemow/quickgraph/internal/logging"
)

// requestTimeout bounds every outbound GraphQL and REST call.
const requestTimeout = 30 * time.Second

// Result is the decoded GraphQL response envelope: a JSON object with
// optional top-level "data" and/or "errors" fields.
type Result map[string]interface{}

// HasErrors reports whether the envelope carries a top-level errors array.
func (r Result) HasErrors() bool {
	_, ok := r["errors"]
	return ok
}

// ErrorResult builds an envelope carrying a single error message. Used to
// convert local and transport failures into the uniform response shape.
func ErrorResult(message string) Result {
	return Result{
		"errors": []interface{}{
			map[string]interface{}{"message": message},
		},
	}
}

// Client executes authenticated GraphQL operations against the Intuit API.
type Client struct {
	config     Config
	tokens     TokenProvider
	httpClient *http.Client
	userAgent  string
	logger     *logging.SlogAdapter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTPClient sets the HTTP client used for API requests.
func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent on API requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithClientLogger sets the logger for request diagnostics.
func WithClientLogger(logger *logging.SlogAdapter) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an Intuit API client. The token provider is injected so
// tests can substitute a static token source.
func NewClient(config Config, tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		config:     config,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  "quickgraph/dev",
		logger:     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config
}

// RealmID returns the configured QuickBooks company ID, or empty if none was set.
func (c *Client) RealmID() string {
	return c.config.RealmID
}

// Execute runs one GraphQL query or mutation and returns the decoded response
// body verbatim. Remote-reported GraphQL errors stay in-band; local and
// transport failures are converted into the same envelope shape, so callers
// always receive a well-formed Result and never an error for remote failures.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) Result {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Error("failed to obtain access token", logging.Err(err))
		return ErrorResult(fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	variables = c.injectRealmID(variables)

	payload := map[string]interface{}{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ErrorResult(fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	c.logger.Debug("executing GraphQL request",
		"endpoint", c.config.ResolvedGraphQLURL(),
		"query", truncate(query, 100))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.ResolvedGraphQLURL(), bytes.NewReader(body))
	if err != nil {
		return ErrorResult(fmt.Sprintf("An unexpected error occurred: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("GraphQL request failed", logging.Err(err))
		return ErrorResult(fmt.Sprintf("HTTP Request Error connecting to Intuit: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	c.logger.Debug("GraphQL response received", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := statusErrorDetail(resp.StatusCode, respBody)
		c.logger.Error("GraphQL request returned error status",
			"status", resp.StatusCode,
			"detail", detail)
		return ErrorResult(detail)
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return ErrorResult(fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	// GraphQL-level errors in a 2xx body are not a local failure: return
	// them verbatim and only log.
	if result.HasErrors() {
		c.logger.Warn("GraphQL response contained errors", "errors", result["errors"])
	}

	return result
}

// injectRealmID returns the variables mapping with the configured realm ID
// added under "realmId" unless the caller already supplied one.
func (c *Client) injectRealmID(variables map[string]interface{}) map[string]interface{} {
	if c.config.RealmID == "" {
		return variables
	}
	if variables == nil {
		variables = make(map[string]interface{})
	}
	if _, ok := variables["realmId"]; !ok {
		variables["realmId"] = c.config.RealmID
	}
	return variables
}

// statusErrorDetail extracts a best-effort error message from a non-2xx
// response body. It tries the GraphQL errors shape first, then the OAuth
// error shape, and falls back to the raw truncated body.
func statusErrorDetail(statusCode int, body []byte) string {
	detail := fmt.Sprintf("HTTP Status Error: %d", statusCode)

	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case len(parsed.Errors) > 0 && parsed.Errors[0].Message != "":
			return detail + " - " + parsed.Errors[0].Message
		case parsed.Error.Message != "":
			return detail + " - " + parsed.Error.Message
		}
	}

	return detail + " - Response: " + truncate(string(body), 200)
}
