package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"listsync/internal/domain"
)

func TestStoreRepository_Create(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO stores`).
		WithArgs("Rewe", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("store-uuid-1"))

	repo := NewStoreRepository(db)
	s := &domain.Store{Name: "Rewe", OwnerUserID: "user-1"}
	require.NoError(t, repo.Create(ctx, s))
	require.Equal(t, "store-uuid-1", s.ID)
}

func TestStoreRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM stores`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewStoreRepository(db)
	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreRepository_EnsureCategory(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Dairy").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-uuid-1"))

	repo := NewStoreRepository(db)
	id, err := repo.EnsureCategory(ctx, "  Dairy  ")
	require.NoError(t, err)
	require.Equal(t, "cat-uuid-1", id)
}

func TestStoreRepository_EnsureCategory_EmptyName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStoreRepository(db)
	_, err = repo.EnsureCategory(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreRepository_ListCategories_Paginated(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT (.+) FROM categories`).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("cat-3", "Dairy").
			AddRow("cat-4", "Frozen"))

	repo := NewStoreRepository(db)
	categories, total, err := repo.ListCategories(ctx, domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, categories, 2)
	require.Equal(t, "Dairy", categories[0].Name)
}

func TestStoreRepository_ListCategories_DefaultPageSize(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// Zero-value params still produce a bounded query.
	mock.ExpectQuery(`SELECT (.+) FROM categories`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	repo := NewStoreRepository(db)
	categories, total, err := repo.ListCategories(ctx, domain.PaginationParams{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, categories)
	require.NoError(t, mock.ExpectationsWereMet())
}
