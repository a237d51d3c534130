package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// GetByPrincipal retrieves a single profile by principal id.
func (r *PostgresRepository) GetByPrincipal(ctx context.Context, principalID uuid.UUID) (*Profile, error) {
	query := `
		SELECT principal_id, email, preferences, shared_access_to, created_at, updated_at
		FROM profiles
		WHERE principal_id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, principalID))
}

// Ensure creates the profile row if absent and returns the stored profile.
func (r *PostgresRepository) Ensure(ctx context.Context, principalID uuid.UUID, email string) (*Profile, error) {
	query := `
		INSERT INTO profiles (principal_id, email)
		VALUES ($1, $2)
		ON CONFLICT (principal_id) DO UPDATE SET
			email      = EXCLUDED.email,
			updated_at = NOW()
		RETURNING principal_id, email, preferences, shared_access_to, created_at, updated_at`

	return r.scanOne(r.pool.QueryRow(ctx, query, principalID, strings.ToLower(email)))
}

// SetSharedAccess upserts the delegate profile and points it at ownerID.
func (r *PostgresRepository) SetSharedAccess(ctx context.Context, principalID uuid.UUID, email string, ownerID uuid.UUID) error {
	query := `
		INSERT INTO profiles (principal_id, email, shared_access_to)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal_id) DO UPDATE SET
			shared_access_to = EXCLUDED.shared_access_to,
			updated_at       = NOW()`

	if _, err := r.pool.Exec(ctx, query, principalID, strings.ToLower(email), ownerID); err != nil {
		return fmt.Errorf("setting shared access pointer: %w", err)
	}

	return nil
}

// ClearSharedAccess nulls the pointer only when it references the given
// owner, so revoking one owner's grant cannot disturb a pointer that has
// since moved to another owner.
func (r *PostgresRepository) ClearSharedAccess(ctx context.Context, principalID, ownerID uuid.UUID) error {
	query := `
		UPDATE profiles
		SET shared_access_to = NULL, updated_at = NOW()
		WHERE principal_id = $1 AND shared_access_to = $2`

	if _, err := r.pool.Exec(ctx, query, principalID, ownerID); err != nil {
		return fmt.Errorf("clearing shared access pointer: %w", err)
	}

	return nil
}

// UpdatePreferences replaces the preference bag on an existing profile.
func (r *PostgresRepository) UpdatePreferences(ctx context.Context, principalID uuid.UUID, prefs map[string]any) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	query := `
		UPDATE profiles
		SET preferences = $2, updated_at = NOW()
		WHERE principal_id = $1`

	result, err := r.pool.Exec(ctx, query, principalID, raw)
	if err != nil {
		return fmt.Errorf("updating preferences: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Profile, error) {
	var (
		p       Profile
		rawPref []byte
	)
	err := row.Scan(&p.PrincipalID, &p.Email, &rawPref, &p.SharedAccessTo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	if len(rawPref) > 0 {
		if err := json.Unmarshal(rawPref, &p.Preferences); err != nil {
			// A malformed bag must not make the profile unreadable;
			// treat it as empty.
			p.Preferences = map[string]any{}
		}
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}

	return &p, nil
}
