package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/middleware"
	"github.com/lifedash/lifedash/internal/api/response"
)

// MeHandler reports who the caller is and whose data they operate on.
// The UI calls it once after login to decide which dashboard to render.
type MeHandler struct {
	gate *access.Gate
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(gate *access.Gate) *MeHandler {
	return &MeHandler{gate: gate}
}

type meResponse struct {
	PrincipalID    string `json:"principalId"`
	Email          string `json:"email"`
	IsPrimaryOwner bool   `json:"isPrimaryOwner"`
	DataOwnerID    string `json:"dataOwnerId"`
	Privileged     bool   `json:"privileged"`
}

// ServeHTTP handles GET /me.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session token is required", requestID)
		return
	}

	dbCtx, err := h.gate.DatabaseContext(r.Context(), principal)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Account is not approved for access", requestID)
			return
		}
		slog.Error("failed to resolve data owner", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve session", requestID)
		return
	}

	response.Success(w, http.StatusOK, meResponse{
		PrincipalID:    principal.ID.String(),
		Email:          principal.Email,
		IsPrimaryOwner: h.gate.IsPrimaryOwner(principal),
		DataOwnerID:    dbCtx.OwnerID.String(),
		Privileged:     dbCtx.Privileged,
	}, requestID)
}
