package intuit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullQueryFlow exercises the complete path: refresh-token exchange,
// cached token reuse, and GraphQL execution against test doubles.
func TestFullQueryFlow(t *testing.T) {
	var exchanges atomic.Int64
	oauthServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "flow-access-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer oauthServer.Close()

	var queries atomic.Int64
	graphqlServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		assert.Equal(t, "Bearer flow-access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"invoices":{"nodes":[{"id":"inv-1"}]}}}`))
	}))
	defer graphqlServer.Close()

	config := Config{
		ClientID:     "flow-client",
		ClientSecret: "flow-secret",
		RefreshToken: "flow-refresh",
		Environment:  EnvironmentSandbox,
		TokenURL:     oauthServer.URL,
		GraphQLURL:   graphqlServer.URL,
	}

	tokens := NewCachedTokenProvider(config)
	client := NewClient(config, tokens)

	ctx := context.Background()

	// First query triggers exactly one token exchange
	result := client.Execute(ctx, "query { invoices { nodes { id } } }", nil)
	require.False(t, result.HasErrors(), "result: %v", result)
	assert.Equal(t, int64(1), exchanges.Load())
	assert.Equal(t, int64(1), queries.Load())

	// Second query reuses the cached token
	result = client.Execute(ctx, "query { invoices { nodes { id } } }", nil)
	require.False(t, result.HasErrors())
	assert.Equal(t, int64(1), exchanges.Load(), "cached token must be reused")
	assert.Equal(t, int64(2), queries.Load())

	cached := tokens.CachedToken()
	require.NotNil(t, cached)
	assert.Equal(t, "flow-access-token", cached.AccessToken)
	assert.True(t, cached.Expiry.After(time.Now().Add(expiryMargin)))
}

// TestFullQueryFlow_ExpiredTokenRefreshes verifies that a stale cache slot
// causes a second exchange on the next query.
func TestFullQueryFlow_ExpiredTokenRefreshes(t *testing.T) {
	var exchanges atomic.Int64
	oauthServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "short-lived-token",
			"token_type":   "bearer",
			"expires_in":   30,
		})
	}))
	defer oauthServer.Close()

	graphqlServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer graphqlServer.Close()

	config := Config{
		ClientID:     "flow-client",
		ClientSecret: "flow-secret",
		RefreshToken: "flow-refresh",
		Environment:  EnvironmentSandbox,
		TokenURL:     oauthServer.URL,
		GraphQLURL:   graphqlServer.URL,
	}

	tokens := NewCachedTokenProvider(config)
	client := NewClient(config, tokens)

	ctx := context.Background()

	// A 30s lifetime is already inside the 60s expiry margin, so every
	// query pays for a fresh exchange.
	result := client.Execute(ctx, "query { x }", nil)
	require.False(t, result.HasErrors())
	result = client.Execute(ctx, "query { x }", nil)
	require.False(t, result.HasErrors())

	assert.Equal(t, int64(2), exchanges.Load())
}
