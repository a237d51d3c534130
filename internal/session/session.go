// Package session resolves the bearer tokens minted by the external auth
// provider into Principals. The provider owns accounts; this service only
// verifies its signatures.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSession is returned when no session token is present.
var ErrNoSession = errors.New("no session")

// ErrInvalidSession is returned when a session token fails verification.
var ErrInvalidSession = errors.New("invalid session token")

// Principal is the authenticated identity carried by a session token.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Claims is the subset of the auth provider's token claims the service
// consumes. The subject is the principal id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verifier validates HS256 session tokens against the shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given HMAC secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw session token, returning the Principal
// it identifies. Emails are lower-cased so every downstream comparison
// works on one normalization.
func (v *Verifier) Verify(rawToken string) (*Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidSession
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, ErrInvalidSession
	}

	return &Principal{ID: id, Email: email}, nil
}
