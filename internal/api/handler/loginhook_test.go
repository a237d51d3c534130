package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/handler"
)

const hookSecret = "hook-secret-for-tests"

func newLoginHook(t *testing.T) (*handler.LoginHookHandler, *memGrantRepo, *memProfileRepo) {
	t.Helper()

	grants := newMemGrantRepo()
	profiles := newMemProfileRepo()
	resolver := access.NewResolver(grants, profiles)

	hash, err := bcrypt.GenerateFromPassword([]byte(hookSecret), bcrypt.MinCost)
	require.NoError(t, err)

	return handler.NewLoginHookHandler(resolver, string(hash)), grants, profiles
}

func postHook(t *testing.T, h *handler.LoginHookHandler, secret string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/hooks/login", bytes.NewReader(raw))
	if secret != "" {
		req.Header.Set("X-Hook-Secret", secret)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoginHook_ResolvesPendingGrant(t *testing.T) {
	h, grants, profiles := newLoginHook(t)
	ownerID := uuid.New()
	principalID := uuid.New()

	g := &access.Grant{OwnerID: ownerID, Email: "assistant@example.com", Level: access.LevelRead}
	require.NoError(t, grants.Upsert(context.Background(), g))

	w := postHook(t, h, hookSecret, map[string]string{
		"principalId": principalID.String(),
		"email":       "assistant@example.com",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)

	resolved, err := grants.GetByOwnerAndPrincipal(context.Background(), ownerID, principalID)
	require.NoError(t, err)
	assert.Equal(t, "assistant@example.com", resolved.Email)

	p, err := profiles.GetByPrincipal(context.Background(), principalID)
	require.NoError(t, err)
	require.NotNil(t, p.SharedAccessTo)
	assert.Equal(t, ownerID, *p.SharedAccessTo)
}

func TestLoginHook_WrongSecret(t *testing.T) {
	h, _, _ := newLoginHook(t)

	w := postHook(t, h, "wrong-secret", map[string]string{
		"principalId": uuid.NewString(),
		"email":       "assistant@example.com",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHook_MissingSecret(t *testing.T) {
	h, _, _ := newLoginHook(t)

	w := postHook(t, h, "", map[string]string{
		"principalId": uuid.NewString(),
		"email":       "assistant@example.com",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHook_InvalidPrincipalID(t *testing.T) {
	h, _, _ := newLoginHook(t)

	w := postHook(t, h, hookSecret, map[string]string{
		"principalId": "not-a-uuid",
		"email":       "assistant@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHook_InvalidEmail(t *testing.T) {
	h, _, _ := newLoginHook(t)

	w := postHook(t, h, hookSecret, map[string]string{
		"principalId": uuid.NewString(),
		"email":       "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHook_NoPendingGrantsIsStillOK(t *testing.T) {
	h, _, _ := newLoginHook(t)

	w := postHook(t, h, hookSecret, map[string]string{
		"principalId": uuid.NewString(),
		"email":       "nobody@example.com",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
}
