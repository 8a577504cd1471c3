package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"listsync/internal/domain"
)

type itemService struct {
	itemRepo    domain.ItemRepository
	listRepo    domain.ListRepository
	permissions domain.PermissionLedger
	outbox      domain.OutboxService
	txManager   domain.TxManager
	logger      *slog.Logger
}

// NewItemService creates an ItemService. Mutations require WRITE on the
// owning list and record their outbox event in the same transaction.
func NewItemService(itemRepo domain.ItemRepository, listRepo domain.ListRepository, permissions domain.PermissionLedger, outbox domain.OutboxService, txManager domain.TxManager, logger *slog.Logger) domain.ItemService {
	return &itemService{
		itemRepo:    itemRepo,
		listRepo:    listRepo,
		permissions: permissions,
		outbox:      outbox,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *itemService) AddItem(ctx context.Context, listID, userID string, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: item is required", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(item.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: item name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
	}
	if err := s.requireTier(ctx, userID, listID, domain.TierWrite); err != nil {
		return nil, err
	}
	if _, err := s.listRepo.GetByID(ctx, listID); err != nil {
		return nil, err
	}

	now := time.Now()
	created := domain.NewItem(listID, name, item.Quantity, now, now)
	if created.Quantity <= 0 {
		created.Quantity = 1
	}
	created.StoreID = item.StoreID
	created.CategoryID = item.CategoryID

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventItemCreated, domain.AggregateItem, created.ID, listID, userID, created)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *itemService) ListItems(ctx context.Context, listID, userID string) ([]*domain.Item, error) {
	if err := s.requireTier(ctx, userID, listID, domain.TierRead); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByListID(ctx, listID)
}

func (s *itemService) UpdateItem(ctx context.Context, itemID, userID string, update *domain.Item) (*domain.Item, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: item is required", domain.ErrInvalidInput)
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTier(ctx, userID, item.ListID, domain.TierWrite); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		if len(name) > maxNameLen {
			return nil, fmt.Errorf("%w: item name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
		}
		item.Name = name
	}
	if update.Quantity > 0 {
		item.Quantity = update.Quantity
	}
	if update.StoreID != "" {
		item.StoreID = update.StoreID
	}
	if update.CategoryID != "" {
		item.CategoryID = update.CategoryID
	}
	item.UpdatedAt = time.Now()

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventItemUpdated, domain.AggregateItem, item.ID, item.ListID, userID, item)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) MarkItem(ctx context.Context, itemID, userID string, marked bool) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTier(ctx, userID, item.ListID, domain.TierWrite); err != nil {
		return nil, err
	}

	item.Marked = marked
	item.UpdatedAt = time.Now()
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to mark item: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventItemMarked, domain.AggregateItem, item.ID, item.ListID, userID, item)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) RemoveItem(ctx context.Context, itemID, userID string) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.requireTier(ctx, userID, item.ListID, domain.TierWrite); err != nil {
		return err
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventItemDeleted, domain.AggregateItem, itemID, item.ListID, userID, item)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
}

func (s *itemService) requireTier(ctx context.Context, userID, listID string, tier domain.PermissionTier) error {
	userID = strings.TrimSpace(userID)
	listID = strings.TrimSpace(listID)
	if userID == "" || listID == "" {
		return fmt.Errorf("%w: userID and listID are required", domain.ErrInvalidInput)
	}
	ok, err := s.permissions.HasAtLeast(ctx, userID, listID, tier)
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s access required", domain.ErrPermissionDenied, tier)
	}
	return nil
}
