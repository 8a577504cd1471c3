package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"listsync/internal/domain"
)

const maxNameLen = 200

type listService struct {
	listRepo       domain.ListRepository
	itemRepo       domain.ItemRepository
	permissions    domain.PermissionLedger
	invitationRepo domain.InvitationRepository
	outbox         domain.OutboxService
	txManager      domain.TxManager
	logger         *slog.Logger
}

// NewListService creates a ListService. Every mutation appends its outbox
// event via the transaction manager, so the event exists iff the write
// committed.
func NewListService(listRepo domain.ListRepository, itemRepo domain.ItemRepository, permissions domain.PermissionLedger, invitationRepo domain.InvitationRepository, outbox domain.OutboxService, txManager domain.TxManager, logger *slog.Logger) domain.ListService {
	return &listService{
		listRepo:       listRepo,
		itemRepo:       itemRepo,
		permissions:    permissions,
		invitationRepo: invitationRepo,
		outbox:         outbox,
		txManager:      txManager,
		logger:         logger,
	}
}

// newOutboxEvent builds the durable event record for a mutation. The ULID
// event ID doubles as the relay's idempotency key.
func newOutboxEvent(eventType, aggregateType, aggregateID, listID, actorID string, payload any) (*domain.OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &domain.OutboxEvent{
		EventID:       ulid.Make().String(),
		EventType:     eventType,
		EventVersion:  1,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		ListID:        listID,
		ActorID:       actorID,
		Payload:       body,
		OccurredAt:    time.Now(),
	}, nil
}

func (s *listService) CreateList(ctx context.Context, name, ownerUserID string) (*domain.List, error) {
	name = strings.TrimSpace(name)
	ownerUserID = strings.TrimSpace(ownerUserID)
	if name == "" || len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: list name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
	}
	if ownerUserID == "" {
		return nil, fmt.Errorf("%w: ownerUserID is required", domain.ErrInvalidInput)
	}

	now := time.Now()
	list := domain.NewList(name, ownerUserID, now, now)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.listRepo.Create(ctx, list); err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		// The owner's ADMIN grant is what later authorizes issuing
		// invitations; it is seeded here so the ledger is the single check.
		if _, err := s.permissions.UpsertMaxTier(ctx, ownerUserID, list.ID, domain.TierAdmin); err != nil {
			return fmt.Errorf("failed to grant owner permission: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventListCreated, domain.AggregateList, list.ID, list.ID, ownerUserID, list)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *listService) GetList(ctx context.Context, listID, userID string) (*domain.List, error) {
	if err := s.requireTier(ctx, userID, listID, domain.TierRead); err != nil {
		return nil, err
	}
	return s.listRepo.GetByID(ctx, listID)
}

func (s *listService) ListMyLists(ctx context.Context, userID string) ([]*domain.List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID is required", domain.ErrInvalidInput)
	}
	return s.listRepo.ListByUserID(ctx, userID)
}

func (s *listService) RenameList(ctx context.Context, listID, userID, name string) (*domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: list name must be 1-%d characters", domain.ErrInvalidInput, maxNameLen)
	}
	if err := s.requireTier(ctx, userID, listID, domain.TierAdmin); err != nil {
		return nil, err
	}

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	list.Name = name
	list.UpdatedAt = time.Now()
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.listRepo.Update(ctx, list); err != nil {
			return fmt.Errorf("failed to update list: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventListUpdated, domain.AggregateList, list.ID, list.ID, userID, list)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *listService) DeleteList(ctx context.Context, listID, userID string) error {
	if err := s.requireTier(ctx, userID, listID, domain.TierAdmin); err != nil {
		return err
	}
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return err
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.listRepo.Delete(ctx, listID); err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		// The list owns its grants and share links: both go with it.
		if _, err := s.permissions.RevokeAll(ctx, listID); err != nil {
			return fmt.Errorf("failed to revoke permissions: %w", err)
		}
		if _, err := s.invitationRepo.DeactivateByListID(ctx, listID); err != nil {
			return fmt.Errorf("failed to deactivate invitations: %w", err)
		}
		ev, err := newOutboxEvent(domain.EventListDeleted, domain.AggregateList, listID, listID, userID, list)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, ev)
	})
}

func (s *listService) requireTier(ctx context.Context, userID, listID string, tier domain.PermissionTier) error {
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
