package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when a profile record is not found.
var ErrProfileNotFound = errors.New("profile not found")

// Repository provides operations on the profiles table.
type Repository interface {
	GetByPrincipal(ctx context.Context, principalID uuid.UUID) (*Profile, error)
	// Ensure creates the profile row if it does not exist yet, returning
	// the stored profile either way.
	Ensure(ctx context.Context, principalID uuid.UUID, email string) (*Profile, error)
	// SetSharedAccess upserts the delegate's profile and points it at the
	// given owner.
	SetSharedAccess(ctx context.Context, principalID uuid.UUID, email string, ownerID uuid.UUID) error
	// ClearSharedAccess removes the delegation pointer on the given
	// principal's profile when it currently references ownerID. Clearing
	// an absent pointer is not an error.
	ClearSharedAccess(ctx context.Context, principalID, ownerID uuid.UUID) error
	UpdatePreferences(ctx context.Context, principalID uuid.UUID, prefs map[string]any) error
}
