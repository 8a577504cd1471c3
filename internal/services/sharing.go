package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"listsync/internal/domain"
)

type sharingService struct {
	invitationRepo  domain.InvitationRepository
	permissions     domain.PermissionLedger
	hashGen         domain.HashGenerator
	txManager       domain.TxManager
	logger          *slog.Logger
	defaultTTL      time.Duration
	hashMaxAttempts int
}

// NewSharingService creates a SharingService with the given repositories,
// hash generator, and transaction manager. defaultTTL applies when Issue is
// called with a non-positive ttl.
func NewSharingService(invitationRepo domain.InvitationRepository, permissions domain.PermissionLedger, hashGen domain.HashGenerator, txManager domain.TxManager, logger *slog.Logger, defaultTTL time.Duration, hashMaxAttempts int) domain.SharingService {
	return &sharingService{
		invitationRepo:  invitationRepo,
		permissions:     permissions,
		hashGen:         hashGen,
		txManager:       txManager,
		logger:          logger,
		defaultTTL:      defaultTTL,
		hashMaxAttempts: hashMaxAttempts,
	}
}

func (s *sharingService) Issue(ctx context.Context, listID, issuerUserID string, tier domain.PermissionTier, ttl time.Duration) (*domain.Invitation, error) {
	listID = strings.TrimSpace(listID)
	issuerUserID = strings.TrimSpace(issuerUserID)
	if listID == "" || issuerUserID == "" {
		return nil, fmt.Errorf("%w: listID and issuerUserID are required", domain.ErrInvalidInput)
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: invalid tier", domain.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	ok, err := s.permissions.HasAtLeast(ctx, issuerUserID, listID, domain.TierAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check issuer permission: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: issuing invitations requires admin access", domain.ErrPermissionDenied)
	}

	// The uniqueness invariant is system-wide, so the snapshot covers every
	// active invitation, not just this list's.
	existing, err := s.invitationRepo.ActiveHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active hashes: %w", err)
	}
	hash, err := s.hashGen.GenerateUnique(listID, issuerUserID, existing, s.hashMaxAttempts)
	if err != nil {
		if errors.Is(err, domain.ErrHashExhausted) {
			// A collision at this entropy means the random source is broken.
			s.logger.Error("capability hash generation exhausted attempts",
				"list_id", listID, "max_attempts", s.hashMaxAttempts)
		}
		return nil, err
	}

	now := time.Now()
	inv := &domain.Invitation{
		ListID:         listID,
		IssuedByUserID: issuerUserID,
		Hash:           hash,
		Tier:           tier,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		Active:         true,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to store invitation: %w", err)
	}
	return inv, nil
}

func (s *sharingService) Redeem(ctx context.Context, hash, userID string) (*domain.Invitation, *domain.Permission, error) {
	hash = strings.TrimSpace(hash)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: userID is required", domain.ErrInvalidInput)
	}
	if !s.hashGen.ValidateFormat(hash) {
		return nil, nil, fmt.Errorf("%w: malformed invitation hash", domain.ErrInvalidInput)
	}

	inv, err := s.invitationRepo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	// Expiry is decided by wall clock, not the active flag, so a redeem
	// racing the sweep resolves the same way regardless of sweep progress.
	if time.Now().After(inv.ExpiresAt) || time.Now().Equal(inv.ExpiresAt) {
		return nil, nil, domain.ErrInvitationExpired
	}
	if !inv.Active {
		return nil, nil, domain.ErrInvitationInactive
	}

	// Upsert-with-max-tier keeps concurrent redemptions for the same
	// (user, list) down to one row and never lowers an existing grant.
	var perm *domain.Permission
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		perm, err = s.permissions.UpsertMaxTier(ctx, userID, inv.ListID, inv.Tier)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to grant permission: %w", err)
	}

	s.logger.Info("invitation redeemed",
		"invitation_id", inv.ID, "list_id", inv.ListID, "user_id", userID, "tier", perm.Tier.String())
	return inv, perm, nil
}

func (s *sharingService) Cancel(ctx context.Context, invitationID, actingUserID string) error {
	invitationID = strings.TrimSpace(invitationID)
	actingUserID = strings.TrimSpace(actingUserID)
	if invitationID == "" || actingUserID == "" {
		return fmt.Errorf("%w: invitationID and actingUserID are required", domain.ErrInvalidInput)
	}

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return err
		}
		return fmt.Errorf("failed to look up invitation: %w", err)
	}

	ok, err := s.permissions.HasAtLeast(ctx, actingUserID, inv.ListID, domain.TierAdmin)
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: cancelling invitations requires admin access", domain.ErrPermissionDenied)
	}

	if !inv.Active || !time.Now().Before(inv.ExpiresAt) {
		return domain.ErrInvitationInactive
	}
	if err := s.invitationRepo.Deactivate(ctx, invitationID); err != nil {
		return fmt.Errorf("failed to deactivate invitation: %w", err)
	}
	return nil
}

func (s *sharingService) ListActive(ctx context.Context, listID, userID string) ([]*domain.Invitation, error) {
	if strings.TrimSpace(listID) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: listID and userID are required", domain.ErrInvalidInput)
	}
	ok, err := s.permissions.HasAtLeast(ctx, userID, listID, domain.TierAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check permission: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing invitations requires admin access", domain.ErrPermissionDenied)
	}
	return s.invitationRepo.ListActiveByListID(ctx, listID)
}

func (s *sharingService) RevokeAccess(ctx context.Context, listID, targetUserID, actingUserID string) error {
	listID = strings.TrimSpace(listID)
	targetUserID = strings.TrimSpace(targetUserID)
	actingUserID = strings.TrimSpace(actingUserID)
	if listID == "" || targetUserID == "" || actingUserID == "" {
		return fmt.Errorf("%w: listID, targetUserID and actingUserID are required", domain.ErrInvalidInput)
	}

	ok, err := s.permissions.HasAtLeast(ctx, actingUserID, listID, domain.TierAdmin)
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: revoking access requires admin access", domain.ErrPermissionDenied)
	}

	if err := s.permissions.Revoke(ctx, targetUserID, listID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	s.logger.Info("access revoked",
		"list_id", listID, "user_id", targetUserID, "revoked_by", actingUserID)
	return nil
}

func (s *sharingService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.invitationRepo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invitations: %w", err)
	}
	if count > 0 {
		s.logger.Info("expired invitations deactivated", "count", count)
	}
	return count, nil
}
