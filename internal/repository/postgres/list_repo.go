package postgres

import (
	"context"
	"database/sql"
	"errors"

	"listsync/internal/domain"
)

type listRepository struct {
	DB *sql.DB
}

// NewListRepository returns a domain.ListRepository implemented with Postgres.
func NewListRepository(db *sql.DB) domain.ListRepository {
	return &listRepository{DB: db}
}

func (r *listRepository) Create(ctx context.Context, l *domain.List) error {
	query := `
		INSERT INTO lists (name, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query, l.Name, l.OwnerUserID, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
}

func (r *listRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	query := `
		SELECT id, name, owner_user_id, created_at, updated_at
		FROM lists
		WHERE id = $1
	`
	l := &domain.List{}
	err := q(ctx, r.DB).QueryRowContext(ctx, query, id).
		Scan(&l.ID, &l.Name, &l.OwnerUserID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// ListByUserID returns every list the user can access: owned lists plus
// lists shared with them through the permission ledger.
func (r *listRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.List, error) {
	query := `
		SELECT DISTINCT l.id, l.name, l.owner_user_id, l.created_at, l.updated_at
		FROM lists l
		LEFT JOIN permissions p ON p.list_id = l.id
		WHERE l.owner_user_id = $1 OR p.user_id = $1
		ORDER BY l.created_at DESC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]*domain.List, 0)
	for rows.Next() {
		l := &domain.List{}
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerUserID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *listRepository) Update(ctx context.Context, l *domain.List) error {
	query := `
		UPDATE lists
		SET name = $1, updated_at = $2
		WHERE id = $3
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, l.Name, l.UpdatedAt, l.ID)
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

func (r *listRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM lists WHERE id = $1
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
		return domain.ErrNotFound
	}
	return nil
}
