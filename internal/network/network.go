// Package network defines the transport abstraction the rate limit client
// depends on. Callers inject any implementation; HTTPClient is the default.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// Client performs GET requests on behalf of the rate limit client.
//
// A returned error means the exchange never completed (connection refused,
// context cancelled, ...). A completed exchange with a non-2xx status is
// reported through Response.OK instead.
type Client interface {
	Get(ctx context.Context, url string, opts RequestOptions) (*Response, error)
}

// RequestOptions carries per-request settings.
type RequestOptions struct {
	Headers map[string]string
}

// Response is the outcome of a completed exchange.
type Response struct {
	OK         bool
	StatusCode int
	// Data is the raw JSON body; nil when the server sent no body.
	Data   json.RawMessage
	Header http.Header
}

// HasData reports whether the response carries a usable body.
func (r *Response) HasData() bool {
	return r != nil && len(r.Data) > 0
}

// normalizeBody maps empty, whitespace-only and JSON null bodies to nil.
func normalizeBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}
