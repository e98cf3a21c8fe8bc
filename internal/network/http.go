package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// NewHTTPClient returns a client with the given per-request timeout.
// A non-positive timeout falls back to 30s.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{Timeout: timeout}
}

// Get issues a GET request and reads the full response body.
func (c *HTTPClient) Get(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("http client not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if ua := strings.TrimSpace(c.UserAgent); ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", ua)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		OK:         resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices,
		StatusCode: resp.StatusCode,
		Data:       normalizeBody(body),
		Header:     resp.Header,
	}, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
