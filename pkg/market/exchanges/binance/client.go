// Package binance implements the market.Provider contract against the
// Binance USDⓈ-M futures data endpoints, plus a live aggTrade stream.
//
// Each endpoint has its own decoder with an explicit unit contract: the
// long/short ratio endpoints return fractions of 1 which are scaled to
// the percent range the board displays, and every derived field (ratio,
// basis) is recomputed from the decoded primitives rather than trusted
// from the payload.
package binance

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

const (
	defaultBaseURL          = "https://fapi.binance.com"
	defaultStreamURL        = "wss://fstream.binance.com/ws"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond
)

// Client wraps access to the Binance futures data endpoints.
type Client struct {
	baseURL    string
	streamURL  string
	httpClient *http.Client
	maxRetries int
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default REST endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithStreamURL overrides the default websocket endpoint URL.
func WithStreamURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.streamURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// NewClient constructs a Binance futures data client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		streamURL:  defaultStreamURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// doRequest issues a GET against path with query parameters and decodes
// the JSON response into result, retrying transient failures with a
// doubling backoff.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("binance: build request: %w", err)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("binance: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				// Restricted-region responses land here too; the caller's
				// fallback path takes over.
				lastErr = fmt.Errorf("binance: http status %d: %s", resp.StatusCode, string(body))
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("binance: decode %s: %w", path, err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("binance: request failed without error detail")
}

func parseFloat(val string) (float64, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return 0, fmt.Errorf("binance: empty numeric value")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse float %q: %w", val, err)
	}
	return f, nil
}

func canonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
