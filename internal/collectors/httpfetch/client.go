// Package httpfetch is the shared HTTP GET-and-decode client every
// collector builds on. Grounded on
// XavierBriggs-Services/game-stats-service/internal/providers/espn.Client,
// generalized from a single ESPN base URL to an arbitrary base URL per
// collector, and extended to classify 429/5xx into the retry.RetryAfter
// shape collectors/retry expects.
package httpfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/samlafell/mlbcore/internal/collectors/retry"
)

// Client performs JSON GET requests against one collector's base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	headers    map[string]string
}

// New builds a Client with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  "mlbcore-collector/1.0",
		headers:    headers,
	}
}

// GetJSON issues a GET to baseURL+path and decodes the response body as
// JSON into a map. A 429 or 5xx response is wrapped in a retry.RetryAfter
// so the caller's retry.Policy can honor a Retry-After header.
func (c *Client) GetJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(resp.Body)
		baseErr := fmt.Errorf("httpfetch: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &retry.RetryAfter{Err: baseErr, Delay: retryAfterDelay(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("httpfetch: status=%d body=%s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("httpfetch: decode response: %w", err)
	}
	return result, nil
}

// retryAfterDelay parses the Retry-After header (seconds form); an unparseable
// or absent header falls back to zero, letting the retry policy's own
// backoff govern the delay.
func retryAfterDelay(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
