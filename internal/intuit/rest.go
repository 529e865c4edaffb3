package intuit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// restFallbackNote tags results produced by the REST compatibility path.
const restFallbackNote = "This data was retrieved using REST API fallback"

// companyInfoResponse is the REST companyinfo shape, of which only the
// fields mapped into the GraphQL result are decoded.
type companyInfoResponse struct {
	CompanyInfo struct {
		CompanyName string                 `json:"CompanyName"`
		LegalName   string                 `json:"LegalName"`
		CompanyAddr map[string]interface{} `json:"CompanyAddr"`
	} `json:"CompanyInfo"`
}

// CompanyInfo fetches company information over the REST API and maps it into
// the GraphQL response shape. It is the narrow compatibility fallback for
// company queries that fail over GraphQL.
//
// Unlike Execute, failures are returned as errors: the caller decides whether
// to discard the fallback result after inspecting the error.
func (c *Client) CompanyInfo(ctx context.Context) (Result, error) {
	if c.config.RealmID == "" {
		return nil, fmt.Errorf("no company ID configured for REST fallback")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	url := fmt.Sprintf("%s/v3/company/%s/companyinfo/%s",
		c.config.ResolvedRESTBaseURL(), c.config.RealmID, c.config.RealmID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build company info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("company info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("company info request returned status %d: %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	var info companyInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode company info response: %w", err)
	}

	return Result{
		"data": map[string]interface{}{
			"company": map[string]interface{}{
				"companyName": info.CompanyInfo.CompanyName,
				"legalName":   info.CompanyInfo.LegalName,
				"companyAddr": info.CompanyInfo.CompanyAddr,
				"note":        restFallbackNote,
			},
		},
	}, nil
}
