package donation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"techtalks/internal/domain"
)

const sumPath = "functions/v1/registrations-sum"

type httpFetcher struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewHTTPFetcher returns a DonationFetcher that reads the aggregated total from baseURL.
func NewHTTPFetcher(client *http.Client, baseURL, token string) domain.DonationFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &httpFetcher{client: client, baseURL: baseURL, token: token}
}

type sumResponse struct {
	AmountSum *float64 `json:"amount_sum"`
}

func (f *httpFetcher) Total(ctx context.Context) (float64, error) {
	if f.baseURL == "" {
		return 0, fmt.Errorf("donation endpoint is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+sumPath, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch donation total: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("donation api returned status: %d", resp.StatusCode)
	}

	var data sumResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("failed to decode donation response: %w", err)
	}
	if data.AmountSum == nil {
		return 0, fmt.Errorf("donation response has no amount_sum")
	}
	return *data.AmountSum, nil
}
