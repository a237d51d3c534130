package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrGrantNotFound is returned when no grant matches the given key.
var ErrGrantNotFound = errors.New("access grant not found")

// GrantRepository provides operations on the access_grants table.
// Implementations must store and match emails lower-cased.
type GrantRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Grant, error)
	// Upsert inserts the grant or, when (owner_id, email) already exists,
	// updates its level and granted_at in place. The stored row is
	// written back into g.
	Upsert(ctx context.Context, g *Grant) error
	// Delete removes the grant for (ownerID, email), returning the
	// deleted row so callers can clean up the delegate's pointer.
	Delete(ctx context.Context, ownerID uuid.UUID, email string) (*Grant, error)
	// FindPendingByEmail returns grants whose email matches and whose
	// principal id is still unresolved.
	FindPendingByEmail(ctx context.Context, email string) ([]Grant, error)
	// ResolvePrincipal fills in the delegate's principal id on a grant.
	ResolvePrincipal(ctx context.Context, grantID, principalID uuid.UUID) error
	// GetByOwnerAndPrincipal returns the resolved grant a principal holds
	// on an owner's data, if any.
	GetByOwnerAndPrincipal(ctx context.Context, ownerID, principalID uuid.UUID) (*Grant, error)
	// ExistsByEmail reports whether any owner has granted this email
	// access, resolved or not.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
