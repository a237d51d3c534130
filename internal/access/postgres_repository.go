package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const grantColumns = `id, owner_id, email, principal_id, level, granted_at, updated_at`

// PostgresGrantRepository implements GrantRepository using pgxpool.
type PostgresGrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository creates a new GrantRepository backed by the given
// connection pool.
func NewGrantRepository(pool *pgxpool.Pool) GrantRepository {
	return &PostgresGrantRepository{pool: pool}
}

// ListByOwner retrieves all grants an owner has issued, oldest first.
func (r *PostgresGrantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM access_grants
		WHERE owner_id = $1
		ORDER BY granted_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// Upsert inserts or refreshes a grant. The per-row ON CONFLICT write is
// what makes repeated grants idempotent by (owner, email) without a
// read-modify-write cycle.
func (r *PostgresGrantRepository) Upsert(ctx context.Context, g *Grant) error {
	query := `
		INSERT INTO access_grants (owner_id, email, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, email) DO UPDATE SET
			level      = EXCLUDED.level,
			granted_at = NOW(),
			updated_at = NOW()
		RETURNING ` + grantColumns

	row := r.pool.QueryRow(ctx, query, g.OwnerID, strings.ToLower(g.Email), g.Level)
	stored, err := scanGrant(row)
	if err != nil {
		return fmt.Errorf("upserting grant: %w", err)
	}

	*g = *stored
	return nil
}

// Delete removes the grant for (ownerID, email) and returns the deleted row.
func (r *PostgresGrantRepository) Delete(ctx context.Context, ownerID uuid.UUID, email string) (*Grant, error) {
	query := `
		DELETE FROM access_grants
		WHERE owner_id = $1 AND email = $2
		RETURNING ` + grantColumns

	g, err := scanGrant(r.pool.QueryRow(ctx, query, ownerID, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("deleting grant: %w", err)
	}

	return g, nil
}

// FindPendingByEmail returns unresolved grants matching the email.
func (r *PostgresGrantRepository) FindPendingByEmail(ctx context.Context, email string) ([]Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM access_grants
		WHERE email = $1 AND principal_id IS NULL
		ORDER BY granted_at ASC`

	rows, err := r.pool.Query(ctx, query, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("finding pending grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ResolvePrincipal fills in the principal id on a still-pending grant.
func (r *PostgresGrantRepository) ResolvePrincipal(ctx context.Context, grantID, principalID uuid.UUID) error {
	query := `
		UPDATE access_grants
		SET principal_id = $2, updated_at = NOW()
		WHERE id = $1 AND principal_id IS NULL`

	result, err := r.pool.Exec(ctx, query, grantID, principalID)
	if err != nil {
		return fmt.Errorf("resolving grant principal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGrantNotFound
	}

	return nil
}

// GetByOwnerAndPrincipal returns the resolved grant a principal holds on
// an owner's data.
func (r *PostgresGrantRepository) GetByOwnerAndPrincipal(ctx context.Context, ownerID, principalID uuid.UUID) (*Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM access_grants
		WHERE owner_id = $1 AND principal_id = $2`

	g, err := scanGrant(r.pool.QueryRow(ctx, query, ownerID, principalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("querying grant: %w", err)
	}

	return g, nil
}

// ExistsByEmail reports whether any grant row carries the email.
func (r *PostgresGrantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM access_grants WHERE email = $1)`,
		strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking grant existence: %w", err)
	}

	return exists, nil
}

func scanGrant(row pgx.Row) (*Grant, error) {
	var g Grant
	err := row.Scan(&g.ID, &g.OwnerID, &g.Email, &g.PrincipalID, &g.Level, &g.GrantedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGrants(rows pgx.Rows) ([]Grant, error) {
	var grants []Grant
	for rows.Next() {
		var g Grant
		err := rows.Scan(&g.ID, &g.OwnerID, &g.Email, &g.PrincipalID, &g.Level, &g.GrantedAt, &g.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning grant row: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grant rows: %w", err)
	}

	if grants == nil {
		grants = []Grant{}
	}

	return grants, nil
}
