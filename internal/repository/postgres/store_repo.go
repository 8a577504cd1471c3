package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"listsync/internal/domain"
)

type storeRepository struct {
	DB *sql.DB
}

// NewStoreRepository returns a domain.StoreRepository implemented with Postgres.
func NewStoreRepository(db *sql.DB) domain.StoreRepository {
	return &storeRepository{DB: db}
}

func (r *storeRepository) Create(ctx context.Context, s *domain.Store) error {
	query := `
		INSERT INTO stores (name, owner_user_id)
		VALUES ($1, $2)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query, s.Name, s.OwnerUserID).Scan(&s.ID)
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	query := `
		SELECT id, name, owner_user_id
		FROM stores
		WHERE id = $1
	`
	s := &domain.Store{}
	err := q(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.OwnerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *storeRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Store, error) {
	query := `
		SELECT id, name, owner_user_id
		FROM stores
		WHERE owner_user_id = $1
		ORDER BY name ASC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]*domain.Store, 0)
	for rows.Next() {
		s := &domain.Store{}
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerUserID); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

// EnsureCategory resolves a category by normalized name, creating it if missing.
func (r *storeRepository) EnsureCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidInput
	}
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id string
	if err := q(ctx, r.DB).QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *storeRepository) ListCategories(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, int, error) {
	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name
		FROM categories
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}
