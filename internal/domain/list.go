package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across list operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// List represents a shared, collaboratively edited list.
// swagger:model List
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewList returns a new List with the given fields. ID is typically set by the repository on create.
func NewList(name, ownerUserID string, createdAt, updatedAt time.Time) *List {
	return &List{
		Name:        name,
		OwnerUserID: ownerUserID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// ListRepository defines the interface for list storage
type ListRepository interface {
	Create(ctx context.Context, list *List) error
	GetByID(ctx context.Context, id string) (*List, error)
	ListByUserID(ctx context.Context, userID string) ([]*List, error)
	Update(ctx context.Context, list *List) error
	Delete(ctx context.Context, id string) error
}

// ListService defines list-level operations. Every mutation records the
// matching outbox event in the same transaction as the aggregate write.
type ListService interface {
	CreateList(ctx context.Context, name, ownerUserID string) (*List, error)
	GetList(ctx context.Context, listID, userID string) (*List, error)
	ListMyLists(ctx context.Context, userID string) ([]*List, error)
	RenameList(ctx context.Context, listID, userID, name string) (*List, error)
	DeleteList(ctx context.Context, listID, userID string) error
}
