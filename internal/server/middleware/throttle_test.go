package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleAllow(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	throttle := NewThrottle(2, time.Minute)
	throttle.Clock = func() time.Time { return now }

	ok, _ := throttle.Allow("a")
	assert.True(t, ok)
	ok, _ = throttle.Allow("a")
	assert.True(t, ok)

	ok, wait := throttle.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	ok, _ = throttle.Allow("b")
	assert.True(t, ok, "callers are tracked separately")

	now = now.Add(time.Minute)
	ok, _ = throttle.Allow("a")
	assert.True(t, ok, "window resets")
}

func TestThrottleDropsExpiredWindows(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	throttle := NewThrottle(5, time.Minute)
	throttle.Clock = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		ok, _ := throttle.Allow(key)
		require.True(t, ok)
	}
	assert.Equal(t, 3, throttle.Tracked())

	now = now.Add(30 * time.Second)
	ok, _ := throttle.Allow("d")
	require.True(t, ok)
	assert.Equal(t, 4, throttle.Tracked(), "live windows are kept")

	now = now.Add(45 * time.Second)
	ok, _ = throttle.Allow("e")
	require.True(t, ok)
	assert.Equal(t, 2, throttle.Tracked(), "only d and e are still live")
}

func TestThrottleDisabled(t *testing.T) {
	throttle := NewThrottle(0, time.Minute)
	for i := 0; i < 10; i++ {
		ok, _ := throttle.Allow("a")
		require.True(t, ok)
	}

	var nilThrottle *Throttle
	ok, _ := nilThrottle.Allow("a")
	assert.True(t, ok)
}

func TestThrottleMiddleware(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	throttle := NewThrottle(1, 30*time.Second)
	throttle.Clock = func() time.Time { return now }

	handler := throttle.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ratelimits", nil)
		req = req.WithContext(context.WithValue(req.Context(), TokenContextKey, token))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, request("tok").Code)

	rec := request("tok")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error":"Too many requests"`)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	assert.Equal(t, http.StatusOK, request("other").Code)
}
