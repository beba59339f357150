package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const rainforestEndpoint = "https://api.rainforestapi.com/request"

// RainforestClient is the thin search wrapper over the Rainforest API.
// It reports raw result objects untouched; all normalization lives in
// the service.
type RainforestClient struct {
	apiKey string
	domain string
	client *http.Client
}

func NewRainforestClient(apiKey string, domain string, timeout time.Duration) *RainforestClient {
	if domain == "" {
		domain = "amazon.com"
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &RainforestClient{
		apiKey: apiKey,
		domain: domain,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *RainforestClient) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing rainforest api key")
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("type", "search")
	params.Set("amazon_domain", c.domain)
	params.Set("search_term", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rainforestEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rainforest http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []json.RawMessage
	for _, r := range gjson.GetBytes(body, "search_results").Array() {
		results = append(results, json.RawMessage(r.Raw))
	}
	return results, nil
}
