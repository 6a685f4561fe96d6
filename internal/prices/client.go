package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the Jupiter price API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient creates a price API client. An empty baseURL selects the public
// lite endpoint.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://lite-api.jup.ag/price/v2"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

// HTTPError is a non-2xx response from the price API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("price api http %d", e.StatusCode)
	}
	return fmt.Sprintf("price api http %d: %s", e.StatusCode, b)
}

type priceEntry struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

type priceResponse struct {
	Data map[string]*priceEntry `json:"data"`
}

// GetPrices returns USD prices keyed by mint for the requested mints. Mints
// the API does not know are absent from the result, not an error.
func (c *Client) GetPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	if len(mints) == 0 {
		return map[string]float64{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(mints, ","))

	u := c.BaseURL + "?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out priceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	result := make(map[string]float64, len(out.Data))
	for mint, entry := range out.Data {
		if entry == nil {
			continue
		}
		p, err := strconv.ParseFloat(entry.Price, 64)
		if err != nil {
			continue
		}
		result[mint] = p
	}
	return result, nil
}
