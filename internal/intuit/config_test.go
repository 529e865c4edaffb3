package intuit

import (
	"strings"
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("INTUIT_CLIENT_ID", "id-from-env")
	t.Setenv("INTUIT_CLIENT_SECRET", "secret-from-env")
	t.Setenv("INTUIT_REFRESH_TOKEN", "refresh-from-env")
	t.Setenv("INTUIT_ENVIRONMENT", "production")
	t.Setenv("INTUIT_COMPANY_ID", "9876")

	config := ConfigFromEnv()

	if config.ClientID != "id-from-env" {
		t.Errorf("ClientID = %q", config.ClientID)
	}
	if config.ClientSecret != "secret-from-env" {
		t.Errorf("ClientSecret = %q", config.ClientSecret)
	}
	if config.RefreshToken != "refresh-from-env" {
		t.Errorf("RefreshToken = %q", config.RefreshToken)
	}
	if config.Environment != EnvironmentProduction {
		t.Errorf("Environment = %q", config.Environment)
	}
	if config.RealmID != "9876" {
		t.Errorf("RealmID = %q", config.RealmID)
	}
}

func TestConfigFromEnv_DefaultsToSandbox(t *testing.T) {
	t.Setenv("INTUIT_ENVIRONMENT", "")

	config := ConfigFromEnv()
	if config.Environment != EnvironmentSandbox {
		t.Errorf("Environment = %q, want %q", config.Environment, EnvironmentSandbox)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		Environment:  EnvironmentSandbox,
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing client id", func(c *Config) { c.ClientID = "" }, "INTUIT_CLIENT_ID"},
		{"missing client secret", func(c *Config) { c.ClientSecret = "" }, "INTUIT_CLIENT_SECRET"},
		{"missing refresh token", func(c *Config) { c.RefreshToken = "" }, "INTUIT_REFRESH_TOKEN"},
		{"invalid environment", func(c *Config) { c.Environment = "staging" }, "invalid Intuit environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)

			err := config.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestConfigValidate_ReportsAllMissing(t *testing.T) {
	err := Config{Environment: EnvironmentSandbox}.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, name := range []string{"INTUIT_CLIENT_ID", "INTUIT_CLIENT_SECRET", "INTUIT_REFRESH_TOKEN"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Validate() error missing %s: %v", name, err)
		}
	}
}

func TestResolvedEndpoints(t *testing.T) {
	sandbox := Config{Environment: EnvironmentSandbox}
	production := Config{Environment: EnvironmentProduction}

	if got := sandbox.ResolvedGraphQLURL(); got != sandboxGraphQLURL {
		t.Errorf("sandbox GraphQL URL = %q", got)
	}
	if got := production.ResolvedGraphQLURL(); got != productionGraphQLURL {
		t.Errorf("production GraphQL URL = %q", got)
	}
	if got := sandbox.ResolvedRESTBaseURL(); got != sandboxRESTBaseURL {
		t.Errorf("sandbox REST base URL = %q", got)
	}
	if got := production.ResolvedRESTBaseURL(); got != productionRESTBaseURL {
		t.Errorf("production REST base URL = %q", got)
	}
	if got := sandbox.ResolvedTokenURL(); got != OAuthTokenURL {
		t.Errorf("token URL = %q", got)
	}
}

func TestResolvedEndpoints_Overrides(t *testing.T) {
	config := Config{
		Environment: EnvironmentSandbox,
		TokenURL:    "http://localhost:1/token",
		GraphQLURL:  "http://localhost:1/graphql",
		RESTBaseURL: "http://localhost:1",
	}

	if got := config.ResolvedTokenURL(); got != "http://localhost:1/token" {
		t.Errorf("token URL override not applied: %q", got)
	}
	if got := config.ResolvedGraphQLURL(); got != "http://localhost:1/graphql" {
		t.Errorf("GraphQL URL override not applied: %q", got)
	}
	if got := config.ResolvedRESTBaseURL(); got != "http://localhost:1" {
		t.Errorf("REST base URL override not applied: %q", got)
	}
}
