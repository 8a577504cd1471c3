package domain

import (
	"context"
	"time"
)

// Item represents a single entry on a shared list.
// swagger:model Item
type Item struct {
	ID         string    `json:"id"`
	ListID     string    `json:"list_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	StoreID    string    `json:"store_id,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	Marked     bool      `json:"marked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewItem returns a new Item with the given fields. ID is typically set by the repository on create.
func NewItem(listID, name string, quantity int, createdAt, updatedAt time.Time) *Item {
	return &Item{
		ListID:    listID,
		Name:      name,
		Quantity:  quantity,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ItemRepository defines the interface for item storage
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	ListByListID(ctx context.Context, listID string) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
}

// ItemService defines item-level operations on a list. WRITE permission on
// the owning list is required for every mutation; READ suffices for reads.
type ItemService interface {
	AddItem(ctx context.Context, listID, userID string, item *Item) (*Item, error)
	ListItems(ctx context.Context, listID, userID string) ([]*Item, error)
	UpdateItem(ctx context.Context, itemID, userID string, item *Item) (*Item, error)
	MarkItem(ctx context.Context, itemID, userID string, marked bool) (*Item, error)
	RemoveItem(ctx context.Context, itemID, userID string) error
}
