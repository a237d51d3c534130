package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lifedash/lifedash/internal/profile"
)

// Resolver turns pending email-only grants into resolved ones when the
// delegate authenticates for the first time.
type Resolver struct {
	grants   GrantRepository
	profiles profile.Repository
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(grants GrantRepository, profiles profile.Repository) *Resolver {
	return &Resolver{grants: grants, profiles: profiles}
}

// ResolvePendingGrants is invoked once per successful authentication. It
// fills the principal id into every pending grant matching the email and
// points the delegate's own profile at the granting owner. When several
// owners granted the same email, all grants resolve and the last owner
// processed wins the pointer.
//
// Resolution is best-effort: a failure on one grant is logged and the
// rest still resolve. A second login finds no pending grants and changes
// nothing.
func (r *Resolver) ResolvePendingGrants(ctx context.Context, principalID uuid.UUID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	pending, err := r.grants.FindPendingByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("finding pending grants: %w", err)
	}

	for i := range pending {
		g := &pending[i]

		if err := r.grants.ResolvePrincipal(ctx, g.ID, principalID); err != nil {
			slog.Error("failed to resolve pending grant",
				"grantId", g.ID, "ownerId", g.OwnerID, "error", err)
			continue
		}

		if err := r.profiles.SetSharedAccess(ctx, principalID, email, g.OwnerID); err != nil {
			slog.Error("failed to set delegation pointer",
				"principalId", principalID, "ownerId", g.OwnerID, "error", err)
			continue
		}

		slog.Info("resolved access grant",
			"ownerId", g.OwnerID, "principalId", principalID, "level", g.Level)
	}

	return nil
}
