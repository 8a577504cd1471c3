package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"listsync/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns a domain.InvitationRepository implemented with Postgres.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `id, list_id, issued_by_user_id, hash, tier, created_at, expires_at, active`

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (list_id, issued_by_user_id, hash, tier, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		inv.ListID, inv.IssuedByUserID, inv.Hash, int(inv.Tier), inv.CreatedAt, inv.ExpiresAt, inv.Active,
	).Scan(&inv.ID)
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE id = $1
	`
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetByHash(ctx context.Context, hash string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE hash = $1
	`
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, hash))
}

func (r *invitationRepository) scanOne(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var tier int
	err := row.Scan(&inv.ID, &inv.ListID, &inv.IssuedByUserID, &inv.Hash, &tier, &inv.CreatedAt, &inv.ExpiresAt, &inv.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	inv.Tier = domain.PermissionTier(tier)
	return inv, nil
}

func (r *invitationRepository) ListActiveByListID(ctx context.Context, listID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE list_id = $1 AND active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv := &domain.Invitation{}
		var tier int
		if err := rows.Scan(&inv.ID, &inv.ListID, &inv.IssuedByUserID, &inv.Hash, &tier, &inv.CreatedAt, &inv.ExpiresAt, &inv.Active); err != nil {
			return nil, err
		}
		inv.Tier = domain.PermissionTier(tier)
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

// ActiveHashes loads the uniqueness snapshot checked at issue time. The
// invariant is system-wide, so this deliberately does not filter by list.
func (r *invitationRepository) ActiveHashes(ctx context.Context) (map[string]struct{}, error) {
	query := `
		SELECT hash FROM invitations WHERE active = TRUE
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hashes, nil
}

func (r *invitationRepository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE invitations SET active = FALSE WHERE id = $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *invitationRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE invitations SET active = FALSE
		WHERE active = TRUE AND expires_at <= $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationRepository) DeactivateByListID(ctx context.Context, listID string) (int64, error) {
	query := `
		UPDATE invitations SET active = FALSE
		WHERE active = TRUE AND list_id = $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
