package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"listsync/internal/domain"
)

type storeService struct {
	storeRepo domain.StoreRepository
	logger    *slog.Logger
}

// NewStoreService creates a StoreService backed by the given repository.
func NewStoreService(storeRepo domain.StoreRepository, logger *slog.Logger) domain.StoreService {
	return &storeService{storeRepo: storeRepo, logger: logger}
}

func (s *storeService) CreateStore(ctx context.Context, userID, name string) (*domain.Store, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", domain.ErrInvalidInput)
	}
	if name == "" || len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: store name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
	}

	store := &domain.Store{Name: name, OwnerUserID: userID}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

func (s *storeService) GetStore(ctx context.Context, storeID, userID string) (*domain.Store, error) {
	if strings.TrimSpace(storeID) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: storeID and userID are required", domain.ErrInvalidInput)
	}
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: store belongs to another user", domain.ErrPermissionDenied)
	}
	return store, nil
}

func (s *storeService) ListMyStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID is required", domain.ErrInvalidInput)
	}
	return s.storeRepo.ListByUserID(ctx, userID)
}

func (s *storeService) EnsureCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: category name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
	}
	id, err := s.storeRepo.EnsureCategory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure category: %w", err)
	}
	return &domain.Category{ID: id, Name: name}, nil
}

func (s *storeService) ListCategories(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, int, error) {
	return s.storeRepo.ListCategories(ctx, p)
}
