package intuit

import (
	"fmt"
	"os"
)

// Environment names accepted in INTUIT_ENVIRONMENT.
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// Intuit OAuth token endpoint. The same endpoint serves both environments.
const OAuthTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

// GraphQL endpoints per environment.
const (
	sandboxGraphQLURL    = "https://public-e2e.api.intuit.com/2020-04/graphql"
	productionGraphQLURL = "https://public.api.intuit.com/2020-04/graphql"
)

// REST API base URLs per environment. The company/realm segment is appended
// per request.
const (
	sandboxRESTBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionRESTBaseURL = "https://quickbooks.api.intuit.com"
)

// Config holds the credentials and environment selection for the Intuit API.
// All fields are read once at startup and are immutable afterwards.
type Config struct {
	// ClientID and ClientSecret identify the Intuit app
	ClientID     string
	ClientSecret string

	// RefreshToken is the long-lived credential exchanged for bearer tokens
	RefreshToken string

	// Environment selects sandbox or production endpoints (default: sandbox)
	Environment string

	// RealmID is the optional company identifier injected into requests
	RealmID string

	// TokenURL, GraphQLURL and RESTBaseURL override the well-known endpoints.
	// Empty values select the endpoint matching Environment. Primarily for tests.
	TokenURL    string
	GraphQLURL  string
	RESTBaseURL string
}

// ConfigFromEnv loads the Intuit configuration from environment variables.
// It does not validate completeness; call Validate before serving requests.
func ConfigFromEnv() Config {
	env := os.Getenv("INTUIT_ENVIRONMENT")
	if env == "" {
		env = EnvironmentSandbox
	}

	return Config{
		ClientID:     os.Getenv("INTUIT_CLIENT_ID"),
		ClientSecret: os.Getenv("INTUIT_CLIENT_SECRET"),
		RefreshToken: os.Getenv("INTUIT_REFRESH_TOKEN"),
		Environment:  env,
		RealmID:      os.Getenv("INTUIT_COMPANY_ID"),
	}
}

// Validate checks that the required credentials are present.
// A missing client ID, client secret or refresh token is a fatal startup
// condition: the server must not serve requests without them.
func (c Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "INTUIT_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "INTUIT_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "INTUIT_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required Intuit credentials: %v", missing)
	}

	if c.Environment != EnvironmentSandbox && c.Environment != EnvironmentProduction {
		return fmt.Errorf("invalid Intuit environment %q, must be one of: %s, %s",
			c.Environment, EnvironmentSandbox, EnvironmentProduction)
	}

	return nil
}

// IsProduction reports whether the production endpoints are selected.
func (c Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// ResolvedTokenURL returns the OAuth token endpoint in effect.
func (c Config) ResolvedTokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return OAuthTokenURL
}

// ResolvedGraphQLURL returns the GraphQL endpoint for the selected environment.
func (c Config) ResolvedGraphQLURL() string {
	if c.GraphQLURL != "" {
		return c.GraphQLURL
	}
	if c.IsProduction() {
		return productionGraphQLURL
	}
	return sandboxGraphQLURL
}

// ResolvedRESTBaseURL returns the REST API base URL for the selected environment.
func (c Config) ResolvedRESTBaseURL() string {
	if c.RESTBaseURL != "" {
		return c.RESTBaseURL
	}
	if c.IsProduction() {
		return productionRESTBaseURL
	}
	return sandboxRESTBaseURL
}
