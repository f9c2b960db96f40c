package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "uid"
	requestIDKey ctxKey = "rid"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(raw string) (int64, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <jwt>" header and
// stores the caller's user id in the request context.
func Auth(p TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			uid, err := p.ParseToken(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated caller set by Auth.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(UserIDKey).(int64)
	return uid, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
