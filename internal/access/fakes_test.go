package access_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/profile"
)

// memGrantRepo is an in-memory GrantRepository used across the package
// tests. Function fields override individual operations for failure
// injection, matching the handler-test mock style.
type memGrantRepo struct {
	grants map[uuid.UUID]*access.Grant

	upsertFn  func(ctx context.Context, g *access.Grant) error
	resolveFn func(ctx context.Context, grantID, principalID uuid.UUID) error
	existsErr error
}

func newMemGrantRepo() *memGrantRepo {
	return &memGrantRepo{grants: map[uuid.UUID]*access.Grant{}}
}

func (m *memGrantRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]access.Grant, error) {
	out := []access.Grant{}
	for _, g := range m.grants {
		if g.OwnerID == ownerID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGrantRepo) Upsert(ctx context.Context, g *access.Grant) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, g)
	}

	email := strings.ToLower(g.Email)
	for _, existing := range m.grants {
		if existing.OwnerID == g.OwnerID && existing.Email == email {
			existing.Level = g.Level
			existing.GrantedAt = time.Now().UTC()
			existing.UpdatedAt = existing.GrantedAt
			*g = *existing
			return nil
		}
	}

	stored := *g
	stored.ID = uuid.New()
	stored.Email = email
	stored.GrantedAt = time.Now().UTC()
	stored.UpdatedAt = stored.GrantedAt
	m.grants[stored.ID] = &stored
	*g = stored
	return nil
}

func (m *memGrantRepo) Delete(_ context.Context, ownerID uuid.UUID, email string) (*access.Grant, error) {
	email = strings.ToLower(email)
	for id, g := range m.grants {
		if g.OwnerID == ownerID && g.Email == email {
			delete(m.grants, id)
			return g, nil
		}
	}
	return nil, access.ErrGrantNotFound
}

func (m *memGrantRepo) FindPendingByEmail(_ context.Context, email string) ([]access.Grant, error) {
	email = strings.ToLower(email)
	out := []access.Grant{}
	for _, g := range m.grants {
		if g.Email == email && g.PrincipalID == nil {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGrantRepo) ResolvePrincipal(ctx context.Context, grantID, principalID uuid.UUID) error {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, grantID, principalID)
	}

	g, ok := m.grants[grantID]
	if !ok || g.PrincipalID != nil {
		return access.ErrGrantNotFound
	}
	p := principalID
	g.PrincipalID = &p
	return nil
}

func (m *memGrantRepo) GetByOwnerAndPrincipal(_ context.Context, ownerID, principalID uuid.UUID) (*access.Grant, error) {
	for _, g := range m.grants {
		if g.OwnerID == ownerID && g.PrincipalID != nil && *g.PrincipalID == principalID {
			copied := *g
			return &copied, nil
		}
	}
	return nil, access.ErrGrantNotFound
}

func (m *memGrantRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}

	email = strings.ToLower(email)
	for _, g := range m.grants {
		if g.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// memProfileRepo is an in-memory profile.Repository.
type memProfileRepo struct {
	profiles map[uuid.UUID]*profile.Profile

	setSharedFn func(ctx context.Context, principalID uuid.UUID, email string, ownerID uuid.UUID) error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[uuid.UUID]*profile.Profile{}}
}

func (m *memProfileRepo) GetByPrincipal(_ context.Context, principalID uuid.UUID) (*profile.Profile, error) {
	p, ok := m.profiles[principalID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProfileRepo) Ensure(_ context.Context, principalID uuid.UUID, email string) (*profile.Profile, error) {
	if p, ok := m.profiles[principalID]; ok {
		copied := *p
		return &copied, nil
	}

	p := &profile.Profile{
		PrincipalID: principalID,
		Email:       strings.ToLower(email),
		Preferences: map[string]any{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.profiles[principalID] = p
	copied := *p
	return &copied, nil
}

func (m *memProfileRepo) SetSharedAccess(ctx context.Context, principalID uuid.UUID, email string, ownerID uuid.UUID) error {
	if m.setSharedFn != nil {
		return m.setSharedFn(ctx, principalID, email, ownerID)
	}

	p, ok := m.profiles[principalID]
	if !ok {
		p = &profile.Profile{
			PrincipalID: principalID,
			Email:       strings.ToLower(email),
			Preferences: map[string]any{},
			CreatedAt:   time.Now().UTC(),
		}
		m.profiles[principalID] = p
	}
	o := ownerID
	p.SharedAccessTo = &o
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memProfileRepo) ClearSharedAccess(_ context.Context, principalID, ownerID uuid.UUID) error {
	p, ok := m.profiles[principalID]
	if !ok || p.SharedAccessTo == nil || *p.SharedAccessTo != ownerID {
		return nil
	}
	p.SharedAccessTo = nil
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memProfileRepo) UpdatePreferences(_ context.Context, principalID uuid.UUID, prefs map[string]any) error {
	p, ok := m.profiles[principalID]
	if !ok {
		return profile.ErrProfileNotFound
	}
	p.Preferences = prefs
	return nil
}

var errBackendDown = errors.New("backend unavailable")
