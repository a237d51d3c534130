package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifedash/lifedash/internal/api/handler"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func TestHealth_OK(t *testing.T) {
	h := handler.NewHealthHandler(&mockPinger{}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := handler.NewHealthHandler(&mockPinger{err: errors.New("connection refused")}, "dev")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
