package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/lifedash/lifedash/internal/api/middleware"
	"github.com/lifedash/lifedash/internal/api/response"
)

// DBPinger verifies database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and database health.
type HealthHandler struct {
	pinger  DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pinger DBPinger, version string) *HealthHandler {
	return &HealthHandler{pinger: pinger, version: version}
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Version: h.version, Database: "ok"}
	status := http.StatusOK

	if err := h.pinger.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	response.Success(w, status, resp, requestID)
}
