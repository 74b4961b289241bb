package community

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"techtalks/internal/domain"
)

type httpFetcher struct {
	client *http.Client
	url    string
}

// NewHTTPFetcher returns a fetcher that reads the community events feed at url.
func NewHTTPFetcher(client *http.Client, url string) domain.CommunityEventFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client, url: url}
}

type feedResponse struct {
	Results []domain.CommunityEvent `json:"results"`
}

func (f *httpFetcher) Fetch(ctx context.Context) ([]domain.CommunityEvent, error) {
	if f.url == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("community events api returned status: %d", resp.StatusCode)
	}

	var data feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode community events response: %w", err)
	}
	return data.Results, nil
}
