package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifedash/lifedash/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mintToken(t *testing.T, secret, subject, email string, expiresIn time.Duration) string {
	t.Helper()

	claims := session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Email: email,
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestVerify_ValidToken(t *testing.T) {
	verifier := session.NewVerifier(testSecret)
	id := uuid.New()

	raw := mintToken(t, testSecret, id.String(), "User@Example.com", time.Hour)

	p, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "user@example.com", p.Email, "emails are lower-cased at the boundary")
}

func TestVerify_WrongSecret(t *testing.T) {
	verifier := session.NewVerifier(testSecret)

	raw := mintToken(t, "another-secret-that-is-32-chars!", uuid.NewString(), "user@example.com", time.Hour)

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestVerify_ExpiredToken(t *testing.T) {
	verifier := session.NewVerifier(testSecret)

	raw := mintToken(t, testSecret, uuid.NewString(), "user@example.com", -time.Minute)

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestVerify_NonUUIDSubject(t *testing.T) {
	verifier := session.NewVerifier(testSecret)

	raw := mintToken(t, testSecret, "not-a-uuid", "user@example.com", time.Hour)

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestVerify_MissingEmail(t *testing.T) {
	verifier := session.NewVerifier(testSecret)

	raw := mintToken(t, testSecret, uuid.NewString(), "", time.Hour)

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestVerify_Garbage(t *testing.T) {
	verifier := session.NewVerifier(testSecret)

	_, err := verifier.Verify("not.a.token")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}
