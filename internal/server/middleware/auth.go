package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type tokenContextKey string

// TokenContextKey stores the bearer token accepted by RequireBearer.
const TokenContextKey tokenContextKey = "bearer_token"

// RequireBearer rejects requests without a non-empty bearer token using the
// rate limit service's response envelope.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ratelimit"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success":   false,
				"error":     "Unauthorized",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		ctx := context.WithValue(r.Context(), TokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetToken returns the bearer token stored by RequireBearer.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(TokenContextKey).(string)
	return token
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
