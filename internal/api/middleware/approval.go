package middleware

import (
	"log/slog"
	"net/http"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/response"
)

// RequireApproved returns middleware that rejects principals whose email
// passes neither the static allow-list nor the granted-email check. It
// runs after Session, so a missing principal is a 401, and it fails
// closed on a storage error.
func RequireApproved(approval *access.ApprovalList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			principal := GetPrincipal(r.Context())
			if principal == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session token is required", requestID)
				return
			}

			approved, err := approval.IsApprovedAny(r.Context(), principal.Email)
			if err != nil {
				slog.Error("approval check failed", "error", err, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Approval check failed", requestID)
				return
			}

			if !approved {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Account is not approved for access", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
