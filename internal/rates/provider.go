// Package rates fetches, caches and applies daily exchange rates for
// normalizing expense amounts into the base currency.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrRateUnavailable means conversion is not possible for a currency.
// Callers must reject the operation rather than default to a zero rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Provider fetches the latest multipliers for a base currency.
type Provider interface {
	Fetch(ctx context.Context, base string) (map[string]float64, error)
}

// Client is a Provider over `GET {baseURL}/latest/{base}`, the shape
// exposed by open exchange-rate APIs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (c *Client) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/latest/%s", c.baseURL, url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates for %s: unexpected status %d", base, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates response for %s carries no rates", base)
	}
	return body.Rates, nil
}
