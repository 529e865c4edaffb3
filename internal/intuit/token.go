package intuit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/quickgraph/internal/instrumentation"
	"github.com/teemow/quickgraph/internal/logging"
)

// expiryMargin is the safety window before the recorded expiry at which a
// cached token is considered stale. It prevents races where a token expires
// between acquisition and use in a subsequent HTTP call.
const expiryMargin = 60 * time.Second

// tokenExchangeTimeout bounds the OAuth refresh-token exchange.
const tokenExchangeTimeout = 30 * time.Second

// TokenProvider supplies a currently-valid bearer token for Intuit API calls.
// This abstraction allows test doubles in place of the real OAuth exchange.
type TokenProvider interface {
	// Token returns a bearer token guaranteed valid for at least 60 seconds.
	Token(ctx context.Context) (string, error)
}

// CachedTokenProvider obtains bearer tokens via the Intuit refresh-token grant
// and caches the result in a single in-memory slot. The cached token is
// replaced wholesale on every successful exchange and dies with the process.
//
// Concurrent callers serialize on the provider's mutex, so at most one
// exchange is in flight at a time; any valid token works for any caller.
type CachedTokenProvider struct {
	config     Config
	httpClient *http.Client
	now        func() time.Time
	logger     *logging.SlogAdapter
	metrics    *instrumentation.Metrics

	mu     sync.Mutex
	cached *oauth2.Token
}

// TokenProviderOption configures a CachedTokenProvider.
type TokenProviderOption func(*CachedTokenProvider)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(client *http.Client) TokenProviderOption {
	return func(p *CachedTokenProvider) {
		p.httpClient = client
	}
}

// WithClock sets the time source. Used by tests to control expiry decisions.
func WithClock(now func() time.Time) TokenProviderOption {
	return func(p *CachedTokenProvider) {
		p.now = now
	}
}

// WithTokenLogger sets the logger for token lifecycle diagnostics.
func WithTokenLogger(logger *logging.SlogAdapter) TokenProviderOption {
	return func(p *CachedTokenProvider) {
		p.logger = logger
	}
}

// WithTokenMetrics sets the metrics recorder for token refresh outcomes.
// Every Token call records one of cached, success, or failure on the
// oauth_token_refresh_total counter.
func WithTokenMetrics(metrics *instrumentation.Metrics) TokenProviderOption {
	return func(p *CachedTokenProvider) {
		p.metrics = metrics
	}
}

// NewCachedTokenProvider creates a token provider for the given configuration.
// The cache starts empty; the first Token call performs an exchange.
func NewCachedTokenProvider(config Config, opts ...TokenProviderOption) *CachedTokenProvider {
	p := &CachedTokenProvider{
		config:     config,
		httpClient: &http.Client{Timeout: tokenExchangeTimeout},
		now:        time.Now,
		logger:     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns a bearer token valid for at least the expiry margin.
// A cached token whose expiry exceeds now+60s is returned without any
// network call; otherwise a refresh-token exchange replaces the cache.
func (p *CachedTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.cached.AccessToken != "" && p.cached.Expiry.After(p.now().Add(expiryMargin)) {
		p.logger.Debug("using cached access token",
			"token", logging.SanitizeToken(p.cached.AccessToken),
			"expiry", p.cached.Expiry)
		p.recordRefresh(ctx, instrumentation.RefreshResultCached)
		return p.cached.AccessToken, nil
	}

	token, err := p.exchange(ctx)
	if err != nil {
		p.recordRefresh(ctx, instrumentation.RefreshResultFailure)
		return "", err
	}

	p.cached = token
	p.recordRefresh(ctx, instrumentation.RefreshResultSuccess)
	return token.AccessToken, nil
}

// recordRefresh records a token refresh outcome when metrics are configured.
func (p *CachedTokenProvider) recordRefresh(ctx context.Context, result string) {
	if p.metrics != nil {
		p.metrics.RecordTokenRefresh(ctx, result)
	}
}

// CachedToken returns a copy of the current cache slot, or nil if no token has
// been obtained yet. Intended for diagnostics and tests.
func (p *CachedTokenProvider) CachedToken() *oauth2.Token {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached == nil {
		return nil
	}
	clone := *p.cached
	return &clone
}

// Replace overwrites the cache slot. Intended for tests that need to seed a
// known token state.
func (p *CachedTokenProvider) Replace(token *oauth2.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = token
}

// tokenResponse is the JSON body returned by the Intuit bearer-token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// exchange performs the OAuth refresh-token grant. Intuit's bearer endpoint
// expects the client credentials url-encoded in the body, not in a Basic auth
// header, so the request is built by hand rather than through an
// oauth2.Config token source.
func (p *CachedTokenProvider) exchange(ctx context.Context) (*oauth2.Token, error) {
	p.logger.Debug("requesting new access token",
		"endpoint", p.config.ResolvedTokenURL(),
		"refresh_token", logging.SanitizeToken(p.config.RefreshToken))

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.config.RefreshToken},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.ResolvedTokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Error("token exchange returned error status",
			"status", resp.StatusCode,
			"body", truncate(string(body), 200))
		return nil, fmt.Errorf("token exchange failed with status %d: %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      p.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}

	p.logger.Debug("received new access token",
		"token", logging.SanitizeToken(token.AccessToken),
		"expires_in", tr.ExpiresIn)

	return token, nil
}

// truncate limits s to at most n bytes for log and error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
