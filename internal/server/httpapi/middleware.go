package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkravetz/sixtyfix/internal/server/auth"
)

type ctxKey int

const ctxKeyUserID ctxKey = iota

// AuthJWT checks the Bearer token on each request and stores the
// authenticated user id in the request context.
func AuthJWT(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			userID, err := auth.GetUserIDFromToken(tokenString, secret)
			if err != nil {
				fail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id set by AuthJWT.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}
