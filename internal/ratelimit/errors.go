package ratelimit

import (
	"encoding/json"
	"strings"

	"github.com/sudobility/ratelimit-client/internal/network"
)

const unknownErrorDetail = "Unknown error"

// APIError is a completed exchange that did not yield a usable envelope.
type APIError struct {
	// Action names the attempted operation, e.g. "get rate limits config".
	Action string
	// Detail is the best-effort reason extracted from the response body.
	Detail string
	// StatusCode is the HTTP status, 0 when no response was available.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *APIError) Error() string {
	return "Failed to " + e.Action + ": " + e.Detail
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HandleAPIError builds the error for a failed exchange. The detail comes
// from the body's "error" field, then its "message" field, then
// "Unknown error".
func HandleAPIError(resp *network.Response, action string) *APIError {
	apiErr := &APIError{Action: action, Detail: unknownErrorDetail}
	if resp == nil {
		return apiErr
	}
	apiErr.StatusCode = resp.StatusCode
	if detail := errorDetail(resp.Data); detail != "" {
		apiErr.Detail = detail
	}
	return apiErr
}

func errorDetail(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	if raw, ok := body["error"]; ok {
		if s := rawString(raw); s != "" {
			return s
		}
		// Error-envelope servers nest the reason: {"error":{"message":"..."}}.
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return nested.Message
		}
		if s := rawScalar(raw); s != "" {
			return s
		}
	}
	if raw, ok := body["message"]; ok {
		if s := rawString(raw); s != "" {
			return s
		}
	}
	return ""
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawScalar renders a truthy number or boolean as its JSON text. Zero,
// false and null count as absent.
func rawScalar(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return ""
		}
	case bool:
		if !t {
			return ""
		}
	default:
		return ""
	}
	return strings.TrimSpace(string(raw))
}
