package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/middleware"
	"github.com/lifedash/lifedash/internal/api/response"
	"github.com/lifedash/lifedash/internal/api/validation"
)

// LoginHookHandler receives the auth provider's login-completed webhook
// and resolves any grants pending on the freshly authenticated email.
// The webhook authenticates with a shared secret, not a user session.
type LoginHookHandler struct {
	resolver   *access.Resolver
	secretHash string
}

// NewLoginHookHandler creates a new LoginHookHandler. secretHash is the
// bcrypt hash of the webhook secret.
func NewLoginHookHandler(resolver *access.Resolver, secretHash string) *LoginHookHandler {
	return &LoginHookHandler{resolver: resolver, secretHash: secretHash}
}

type loginHookRequest struct {
	PrincipalID string `json:"principalId"`
	Email       string `json:"email"`
}

// ServeHTTP handles POST /hooks/login.
func (h *LoginHookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	secret := r.Header.Get("X-Hook-Secret")
	if secret == "" || bcrypt.CompareHashAndPassword([]byte(h.secretHash), []byte(secret)) != nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook secret", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	principalID, err := uuid.Parse(req.PrincipalID)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "principalId must be a valid UUID", requestID)
		return
	}

	if fieldErrors := validation.ValidateRevokeEmail(req.Email); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.resolver.ResolvePendingGrants(r.Context(), principalID, req.Email); err != nil {
		slog.Error("failed to resolve pending grants", "error", err, "principalId", principalID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process login", requestID)
		return
	}

	response.NoContent(w)
}
