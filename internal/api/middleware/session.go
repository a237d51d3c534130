package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lifedash/lifedash/internal/api/response"
	"github.com/lifedash/lifedash/internal/session"
)

const principalKey contextKey = "principal"

// Session is middleware that extracts the Authorization bearer token and
// resolves it to a Principal. Missing or invalid tokens return 401.
func Session(verifier *session.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session token is required", requestID)
				return
			}

			principal, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session token", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated Principal from the request context.
func GetPrincipal(ctx context.Context) *session.Principal {
	if p, ok := ctx.Value(principalKey).(*session.Principal); ok {
		return p
	}
	return nil
}
