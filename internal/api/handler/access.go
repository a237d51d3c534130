package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/middleware"
	"github.com/lifedash/lifedash/internal/api/response"
	"github.com/lifedash/lifedash/internal/api/validation"
	"github.com/lifedash/lifedash/internal/metrics"
	"github.com/lifedash/lifedash/internal/session"
)

type grantRequest struct {
	Email       string `json:"email"`
	AccessLevel string `json:"accessLevel"`
}

type grantResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	AccessLevel string  `json:"accessLevel"`
	PrincipalID *string `json:"principalId"`
	Resolved    bool    `json:"resolved"`
	GrantedAt   string  `json:"grantedAt"`
}

func toGrantResponse(g *access.Grant) grantResponse {
	resp := grantResponse{
		ID:          g.ID.String(),
		Email:       g.Email,
		AccessLevel: string(g.Level),
		Resolved:    g.Resolved(),
		GrantedAt:   g.GrantedAt.UTC().Format(time.RFC3339),
	}
	if g.PrincipalID != nil {
		id := g.PrincipalID.String()
		resp.PrincipalID = &id
	}
	return resp
}

// AccessHandler handles the owner-facing grant management endpoints.
type AccessHandler struct {
	registry *access.Registry
	gate     *access.Gate
	approval *access.ApprovalList
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(registry *access.Registry, gate *access.Gate, approval *access.ApprovalList) *AccessHandler {
	return &AccessHandler{registry: registry, gate: gate, approval: approval}
}

// requireOwner returns the principal when it is the primary owner, writing
// the failure response otherwise. Non-owners always receive the same 403
// regardless of what they targeted.
func (h *AccessHandler) requireOwner(w http.ResponseWriter, r *http.Request) *session.Principal {
	requestID := middleware.GetRequestID(r.Context())

	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session token is required", requestID)
		return nil
	}

	if !h.gate.IsPrimaryOwner(principal) {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only the account owner can manage access", requestID)
		return nil
	}

	return principal
}

// List handles GET /access/grants.
func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	principal := h.requireOwner(w, r)
	if principal == nil {
		return
	}

	grants, err := h.registry.ListGrants(r.Context(), principal.ID)
	if err != nil {
		slog.Error("failed to list grants", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list access grants", requestID)
		return
	}

	items := make([]grantResponse, 0, len(grants))
	for i := range grants {
		items = append(items, toGrantResponse(&grants[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /access/grants.
func (h *AccessHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	principal := h.requireOwner(w, r)
	if principal == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateGrantRequest(validation.GrantRequest{
		Email:       req.Email,
		AccessLevel: req.AccessLevel,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	level, err := access.ParseLevel(req.AccessLevel)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID)
		return
	}

	grant, err := h.registry.Grant(r.Context(), principal.ID, principal.Email, req.Email, level)
	if err != nil {
		metrics.GrantOperations.WithLabelValues("grant", "error").Inc()
		slog.Error("failed to create grant", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create access grant", requestID)
		return
	}

	metrics.GrantOperations.WithLabelValues("grant", "ok").Inc()
	h.approval.Invalidate(r.Context(), req.Email)

	response.Success(w, http.StatusCreated, toGrantResponse(grant), requestID)
}

// Delete handles DELETE /access/grants/{email}.
func (h *AccessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	principal := h.requireOwner(w, r)
	if principal == nil {
		return
	}

	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "email must be a valid address", requestID)
		return
	}

	if fieldErrors := validation.ValidateRevokeEmail(email); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.registry.Revoke(r.Context(), principal.ID, email); err != nil {
		if errors.Is(err, access.ErrGrantNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "No access grant exists for that email", requestID)
			return
		}
		metrics.GrantOperations.WithLabelValues("revoke", "error").Inc()
		slog.Error("failed to revoke grant", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke access grant", requestID)
		return
	}

	metrics.GrantOperations.WithLabelValues("revoke", "ok").Inc()
	h.approval.Invalidate(r.Context(), email)

	response.NoContent(w)
}
