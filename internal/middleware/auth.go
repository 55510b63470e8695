package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

type contextKey string

const ClientKey contextKey = "client"

// publicPaths skip auth and rate limiting
var publicPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// APIKeyAuth validates the API key from the Authorization or X-API-Key header.
// With no keys configured every request passes.
func APIKeyAuth(validKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if apiKey == "" {
				apiKey = strings.TrimSpace(r.Header.Get("X-API-Key"))
			}
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			// constant-time comparison
			client := ""
			for i, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					client = "key-" + strconv.Itoa(i)
					break
				}
			}
			if client == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext returns the authenticated client label, "" when auth is off.
func GetClientFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(ClientKey).(string); ok {
		return c
	}
	return ""
}
