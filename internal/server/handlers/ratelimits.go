package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/ratelimit"
	"github.com/sudobility/ratelimit-client/internal/server/fixture"
	"github.com/sudobility/ratelimit-client/internal/server/middleware"
)

// Messages returned in the rate limit envelope.
const (
	msgInvalidPeriod = "Invalid period type"
	msgInternal      = "Internal server error"
)

// RateLimits serves the rate limit endpoints from a Source.
type RateLimits struct {
	source fixture.Source
	now    func() time.Time
}

// NewRateLimits returns handlers over source.
func NewRateLimits(source fixture.Source) *RateLimits {
	return &RateLimits{source: source, now: time.Now}
}

// Config handles GET /ratelimits[/{identifier}].
func (h *RateLimits) Config(w http.ResponseWriter, r *http.Request) {
	identifier := requestIdentifier(r)

	data, err := h.source.Limits(r.Context(), identifier)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, msgInternal, err)
		return
	}
	writeEnvelope(w, http.StatusOK, ratelimit.BaseResponse[ratelimit.RateLimitsConfigData]{
		Success:   true,
		Data:      data,
		Timestamp: h.timestamp(),
	})
}

// History handles GET /ratelimits[/{identifier}]/history/{periodType}.
func (h *RateLimits) History(w http.ResponseWriter, r *http.Request) {
	identifier := requestIdentifier(r)
	period := ratelimit.PeriodType(urlParam(r, "periodType"))
	if !period.Valid() {
		h.fail(w, r, http.StatusBadRequest, msgInvalidPeriod, nil)
		return
	}

	data, err := h.source.History(r.Context(), identifier, period)
	switch {
	case errors.Is(err, fixture.ErrInvalidPeriod):
		h.fail(w, r, http.StatusBadRequest, msgInvalidPeriod, err)
		return
	case err != nil:
		h.fail(w, r, http.StatusInternalServerError, msgInternal, err)
		return
	}
	writeEnvelope(w, http.StatusOK, ratelimit.BaseResponse[ratelimit.RateLimitHistoryData]{
		Success:   true,
		Data:      data,
		Timestamp: h.timestamp(),
	})
}

func (h *RateLimits) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if observability.ServerLogger != nil {
		fields := []zap.Field{
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Int("http_status", status),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		observability.ServerLogger.Warn(message, fields...)
	}

	writeEnvelope(w, status, ratelimit.BaseResponse[struct{}]{
		Success:   false,
		Error:     message,
		Timestamp: h.timestamp(),
	})
}

func (h *RateLimits) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func writeEnvelope[T any](w http.ResponseWriter, status int, body ratelimit.BaseResponse[T]) {
	writeJSON(w, status, body)
}

// requestIdentifier prefers the path parameter and falls back to the
// entitySlug query parameter.
func requestIdentifier(r *http.Request) string {
	if id := urlParam(r, "identifier"); id != "" {
		return id
	}
	return r.URL.Query().Get("entitySlug")
}

// urlParam returns a decoded chi parameter. chi matches against the raw path
// when one is present, so escaped separators arrive still encoded.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
