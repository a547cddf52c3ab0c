// Package geocode suggests place names for the free-text location field.
// Suggestions are a convenience only; lookup failures never block an
// expense operation.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Place is one descriptor returned by the search endpoint.
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client queries a nominatim-style `GET /search?q=...&format=json&limit=N`
// endpoint.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

func NewClient(baseURL string, limit int) *Client {
	if limit < 1 {
		limit = 5
	}
	return &Client{
		baseURL:    baseURL,
		limit:      limit,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns up to limit place suggestions for the query. A blank
// query yields no suggestions and no request.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=%s",
		c.baseURL, url.QueryEscape(query), strconv.Itoa(c.limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode search %q: unexpected status %d", query, resp.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return places, nil
}
