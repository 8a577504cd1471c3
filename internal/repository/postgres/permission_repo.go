package postgres

import (
	"context"
	"database/sql"
	"errors"

	"listsync/internal/domain"
)

type permissionRepository struct {
	DB *sql.DB
}

// NewPermissionRepository returns a domain.PermissionLedger implemented with Postgres.
// The permissions table carries UNIQUE (user_id, list_id); together with the
// GREATEST upsert in UpsertMaxTier that enforces both the unique-grant and
// the monotonic-upgrade invariants in a single statement.
func NewPermissionRepository(db *sql.DB) domain.PermissionLedger {
	return &permissionRepository{DB: db}
}

func (r *permissionRepository) Get(ctx context.Context, userID, listID string) (*domain.Permission, error) {
	query := `
		SELECT id, user_id, list_id, tier, granted_at
		FROM permissions
		WHERE user_id = $1 AND list_id = $2
	`
	p := &domain.Permission{}
	var tier int
	err := q(ctx, r.DB).QueryRowContext(ctx, query, userID, listID).
		Scan(&p.ID, &p.UserID, &p.ListID, &tier, &p.GrantedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A missing permission is a valid query result, not an error.
			return nil, nil
		}
		return nil, err
	}
	p.Tier = domain.PermissionTier(tier)
	return p, nil
}

func (r *permissionRepository) HasAny(ctx context.Context, userID, listID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM permissions
			WHERE user_id = $1 AND list_id = $2
		)
	`
	var ok bool
	err := q(ctx, r.DB).QueryRowContext(ctx, query, userID, listID).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *permissionRepository) HasAtLeast(ctx context.Context, userID, listID string, tier domain.PermissionTier) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM permissions
			WHERE user_id = $1 AND list_id = $2 AND tier >= $3
		)
	`
	var ok bool
	err := q(ctx, r.DB).QueryRowContext(ctx, query, userID, listID, int(tier)).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *permissionRepository) ListByListID(ctx context.Context, listID string) ([]*domain.Permission, error) {
	query := `
		SELECT id, user_id, list_id, tier, granted_at
		FROM permissions
		WHERE list_id = $1
		ORDER BY granted_at ASC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make([]*domain.Permission, 0)
	for rows.Next() {
		p := &domain.Permission{}
		var tier int
		if err := rows.Scan(&p.ID, &p.UserID, &p.ListID, &tier, &p.GrantedAt); err != nil {
			return nil, err
		}
		p.Tier = domain.PermissionTier(tier)
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// UpsertMaxTier creates the grant or raises an existing one, never lowering
// it. Concurrent redemptions for the same (user, list) collapse onto one row
// with the highest tier either of them carried.
func (r *permissionRepository) UpsertMaxTier(ctx context.Context, userID, listID string, tier domain.PermissionTier) (*domain.Permission, error) {
	query := `
		INSERT INTO permissions (user_id, list_id, tier, granted_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, list_id)
		DO UPDATE SET tier = GREATEST(permissions.tier, EXCLUDED.tier)
		RETURNING id, user_id, list_id, tier, granted_at
	`
	p := &domain.Permission{}
	var got int
	err := q(ctx, r.DB).QueryRowContext(ctx, query, userID, listID, int(tier)).
		Scan(&p.ID, &p.UserID, &p.ListID, &got, &p.GrantedAt)
	if err != nil {
		return nil, err
	}
	p.Tier = domain.PermissionTier(got)
	return p, nil
}

func (r *permissionRepository) Revoke(ctx context.Context, userID, listID string) error {
	query := `
		DELETE FROM permissions WHERE user_id = $1 AND list_id = $2
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, userID, listID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *permissionRepository) RevokeAll(ctx context.Context, listID string) (int64, error) {
	query := `
		DELETE FROM permissions WHERE list_id = $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
