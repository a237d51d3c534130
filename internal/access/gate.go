package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lifedash/lifedash/internal/database"
	"github.com/lifedash/lifedash/internal/metrics"
	"github.com/lifedash/lifedash/internal/profile"
	"github.com/lifedash/lifedash/internal/session"
)

// ErrForbidden is returned when an authenticated principal is not allowed
// to proceed: not on the approval list, or not the primary owner for an
// owner-only operation.
var ErrForbidden = errors.New("forbidden")

// DBContext is what downstream data-access code receives in place of a
// raw connection: the pool to use and the owner id to filter rows by.
// Privileged marks the RLS-bypass pool handed to delegates, who have no
// rows of their own to satisfy ownership policies; for them the Gate is
// the only remaining guard.
type DBContext struct {
	DB         *database.DB
	OwnerID    uuid.UUID
	Privileged bool
}

// Gate is the single choke point every data-access path goes through
// before touching a domain table. It decides whose data a request
// operates on and which database role it does so with.
type Gate struct {
	approval          *ApprovalList
	grants            GrantRepository
	profiles          profile.Repository
	primaryOwnerEmail string
	appDB             *database.DB // RLS-constrained role
	serviceDB         *database.DB // RLS-bypass role
}

// NewGate creates a Gate. primaryOwnerEmail is compared case-insensitively.
func NewGate(
	approval *ApprovalList,
	grants GrantRepository,
	profiles profile.Repository,
	primaryOwnerEmail string,
	appDB, serviceDB *database.DB,
) *Gate {
	return &Gate{
		approval:          approval,
		grants:            grants,
		profiles:          profiles,
		primaryOwnerEmail: strings.ToLower(strings.TrimSpace(primaryOwnerEmail)),
		appDB:             appDB,
		serviceDB:         serviceDB,
	}
}

// IsPrimaryOwner reports whether the principal is the configured primary
// owner of the dashboard's data.
func (g *Gate) IsPrimaryOwner(p *session.Principal) bool {
	return strings.ToLower(p.Email) == g.primaryOwnerEmail
}

// DataOwnerID resolves the effective owner id all row filtering uses for
// this principal's requests. The primary owner reads their own rows. A
// delegate reads as the owner their delegation pointer names, provided a
// resolved grant still backs the pointer; with no valid pointer the
// delegate falls back to their own (empty) dataset rather than erroring.
func (g *Gate) DataOwnerID(ctx context.Context, p *session.Principal) (uuid.UUID, error) {
	approved, err := g.approval.IsApprovedAny(ctx, p.Email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("checking approval: %w", err)
	}
	if !approved {
		metrics.AuthzDecisions.WithLabelValues("forbidden").Inc()
		return uuid.Nil, ErrForbidden
	}

	if g.IsPrimaryOwner(p) {
		metrics.AuthzDecisions.WithLabelValues("owner").Inc()
		return p.ID, nil
	}

	prof, err := g.profiles.GetByPrincipal(ctx, p.ID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			metrics.AuthzDecisions.WithLabelValues("self").Inc()
			return p.ID, nil
		}
		return uuid.Nil, fmt.Errorf("loading profile: %w", err)
	}

	if prof.SharedAccessTo == nil {
		metrics.AuthzDecisions.WithLabelValues("self").Inc()
		return p.ID, nil
	}

	// The pointer alone is not trusted: it must be backed by a live
	// resolved grant. A revoked grant leaves the pointer cleared, but a
	// stale pointer must still not grant access.
	_, err = g.grants.GetByOwnerAndPrincipal(ctx, *prof.SharedAccessTo, p.ID)
	if err != nil {
		if errors.Is(err, ErrGrantNotFound) {
			metrics.AuthzDecisions.WithLabelValues("self").Inc()
			return p.ID, nil
		}
		return uuid.Nil, fmt.Errorf("validating delegation pointer: %w", err)
	}

	metrics.AuthzDecisions.WithLabelValues("delegate").Inc()
	return *prof.SharedAccessTo, nil
}

// DatabaseContext composes DataOwnerID with pool selection. The primary
// owner gets the RLS-constrained pool; everyone else gets the privileged
// pool plus the effective owner id to filter by.
func (g *Gate) DatabaseContext(ctx context.Context, p *session.Principal) (*DBContext, error) {
	ownerID, err := g.DataOwnerID(ctx, p)
	if err != nil {
		return nil, err
	}

	if g.IsPrimaryOwner(p) {
		return &DBContext{DB: g.appDB, OwnerID: ownerID}, nil
	}

	return &DBContext{DB: g.serviceDB, OwnerID: ownerID, Privileged: true}, nil
}

// CanAccessUserData reports whether the principal may operate on the
// target owner's data at the required level. Owners always may; delegates
// need a resolved grant whose level ranks at or above the requirement.
func (g *Gate) CanAccessUserData(ctx context.Context, p *session.Principal, targetOwnerID uuid.UUID, required Level) (bool, error) {
	if p.ID == targetOwnerID {
		return true, nil
	}

	grant, err := g.grants.GetByOwnerAndPrincipal(ctx, targetOwnerID, p.ID)
	if err != nil {
		if errors.Is(err, ErrGrantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("querying grant: %w", err)
	}

	return grant.Level.Allows(required), nil
}
