package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lifedash/lifedash/internal/profile"
)

// Registry is the owner-side surface over access grants: list, grant,
// revoke. Callers are expected to have already established that the
// caller is the primary owner (Gate.IsPrimaryOwner); the registry itself
// operates on whatever owner id it is handed.
type Registry struct {
	grants   GrantRepository
	profiles profile.Repository
}

// NewRegistry creates a Registry over the given repositories.
func NewRegistry(grants GrantRepository, profiles profile.Repository) *Registry {
	return &Registry{grants: grants, profiles: profiles}
}

// ListGrants returns every grant the owner has issued. An owner with no
// grants gets an empty slice, never an error.
func (r *Registry) ListGrants(ctx context.Context, ownerID uuid.UUID) ([]Grant, error) {
	return r.grants.ListByOwner(ctx, ownerID)
}

// Grant gives email access to the owner's data at the given level.
// Granting an already-granted email updates its level and refreshes
// granted_at in place; the (owner, email) pair never duplicates. The
// delegate's principal id stays unresolved until their first login.
func (r *Registry) Grant(ctx context.Context, ownerID uuid.UUID, ownerEmail, email string, level Level) (*Grant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("grant email must not be empty")
	}

	// The owner's profile row is created lazily, on first grant.
	if _, err := r.profiles.Ensure(ctx, ownerID, ownerEmail); err != nil {
		return nil, fmt.Errorf("ensuring owner profile: %w", err)
	}

	g := &Grant{
		OwnerID: ownerID,
		Email:   email,
		Level:   level,
	}
	if err := r.grants.Upsert(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// Revoke removes email's grant on the owner's data and clears the
// delegate's delegation pointer so it cannot dangle. Returns
// ErrGrantNotFound when no grant matches.
func (r *Registry) Revoke(ctx context.Context, ownerID uuid.UUID, email string) error {
	deleted, err := r.grants.Delete(ctx, ownerID, email)
	if err != nil {
		return err
	}

	// A pending grant has no delegate profile to clean up.
	if !deleted.Resolved() {
		return nil
	}

	if err := r.profiles.ClearSharedAccess(ctx, *deleted.PrincipalID, ownerID); err != nil {
		return fmt.Errorf("clearing delegation pointer: %w", err)
	}

	return nil
}
