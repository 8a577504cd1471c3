package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"listsync/internal/domain"
)

func TestListRepository_Create(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := domain.NewList("Groceries", "user-1", now, now)

	mock.ExpectQuery(`INSERT INTO lists`).
		WithArgs("Groceries", "user-1", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("list-uuid-1"))

	repo := NewListRepository(db)
	require.NoError(t, repo.Create(ctx, l))
	require.Equal(t, "list-uuid-1", l.ID)
}

func TestListRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM lists`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewListRepository(db)
	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRepository_ListByUserID_IncludesShared(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "owner_user_id", "created_at", "updated_at"}).
		AddRow("list-1", "Groceries", "user-1", now, now).
		AddRow("list-2", "Hardware", "user-2", now, now)

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM lists`).
		WithArgs("user-1").
		WillReturnRows(rows)

	repo := NewListRepository(db)
	lists, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	require.Equal(t, "user-2", lists[1].OwnerUserID)
}
