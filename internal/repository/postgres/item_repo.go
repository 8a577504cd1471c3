package postgres

import (
	"context"
	"database/sql"
	"errors"

	"listsync/internal/domain"
)

type itemRepository struct {
	DB *sql.DB
}

// NewItemRepository returns a domain.ItemRepository implemented with Postgres.
func NewItemRepository(db *sql.DB) domain.ItemRepository {
	return &itemRepository{DB: db}
}

const itemColumns = `id, list_id, name, quantity, store_id, category_id, marked, created_at, updated_at`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (list_id, name, quantity, store_id, category_id, marked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		item.ListID, item.Name, item.Quantity,
		nullString(item.StoreID), nullString(item.CategoryID),
		item.Marked, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
	`
	item, err := scanItem(q(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) ListByListID(ctx context.Context, listID string) ([]*domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE list_id = $1
		ORDER BY created_at ASC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET name = $1, quantity = $2, store_id = $3, category_id = $4, marked = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query,
		item.Name, item.Quantity, nullString(item.StoreID), nullString(item.CategoryID),
		item.Marked, item.UpdatedAt, item.ID,
	)
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

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM items WHERE id = $1
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var storeNull, categoryNull sql.NullString
	err := row.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&storeNull, &categoryNull, &item.Marked, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if storeNull.Valid {
		item.StoreID = storeNull.String
	}
	if categoryNull.Valid {
		item.CategoryID = categoryNull.String
	}
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
