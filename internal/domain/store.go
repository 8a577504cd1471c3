package domain

import "context"

// Store represents a store items can be assigned to (e.g. a grocery chain).
// swagger:model Store
type Store struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerUserID string `json:"owner_user_id"`
}

// Category represents a named grouping for items within a store layout.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StoreRepository defines storage for stores and item categories.
type StoreRepository interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	ListByUserID(ctx context.Context, userID string) ([]*Store, error)
	// EnsureCategory resolves a category by name, creating it if missing,
	// and returns its ID.
	EnsureCategory(ctx context.Context, name string) (categoryID string, err error)
	// ListCategories returns one page of categories ordered by name plus
	// the total category count.
	ListCategories(ctx context.Context, p PaginationParams) ([]*Category, int, error)
}

// StoreService defines store and category operations. Stores are private to
// their owner; categories are a shared vocabulary across all users.
type StoreService interface {
	CreateStore(ctx context.Context, userID, name string) (*Store, error)
	GetStore(ctx context.Context, storeID, userID string) (*Store, error)
	ListMyStores(ctx context.Context, userID string) ([]*Store, error)
	EnsureCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context, p PaginationParams) ([]*Category, int, error)
}
