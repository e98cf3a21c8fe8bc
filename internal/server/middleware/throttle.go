package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Throttle enforces a fixed request window per caller. Callers are keyed by
// bearer token when RequireBearer ran first, otherwise by remote address.
type Throttle struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time

	mu        sync.Mutex
	windows   map[string]*throttleWindow
	lastSweep time.Time
}

type throttleWindow struct {
	start time.Time
	count int
}

// NewThrottle allows limit requests per window. A non-positive limit or
// window disables throttling.
func NewThrottle(limit int, window time.Duration) *Throttle {
	return &Throttle{
		Limit:   limit,
		Window:  window,
		Clock:   time.Now,
		windows: make(map[string]*throttleWindow),
	}
}

func (t *Throttle) enabled() bool {
	return t != nil && t.Limit > 0 && t.Window > 0
}

func (t *Throttle) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now()
}

// Allow records a request for key and reports whether it fits in the current
// window. When it does not, the wait until the window resets is returned.
func (t *Throttle) Allow(key string) (bool, time.Duration) {
	if !t.enabled() {
		return true, 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.windows[key]
	if !ok || !now.Before(w.start.Add(t.Window)) {
		t.sweep(now)
		w = &throttleWindow{start: now}
		t.windows[key] = w
	}

	if w.count >= t.Limit {
		return false, w.start.Add(t.Window).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows, at most once per Window. Callers hold mu.
func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.Window {
		return
	}
	t.lastSweep = now
	for key, w := range t.windows {
		if !now.Before(w.start.Add(t.Window)) {
			delete(t.windows, key)
		}
	}
}

// Tracked reports how many callers currently hold a window.
func (t *Throttle) Tracked() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if !t.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetToken(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		allowed, wait := t.Allow(key)
		if !allowed {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success":   false,
				"error":     "Too many requests",
				"timestamp": t.now().UTC().Format(time.RFC3339),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
