package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"listsync/internal/domain"
)

// OutboxThresholds configures when the outbox health check degrades.
type OutboxThresholds struct {
	WarnPending  int
	ErrorPending int
	WarnAge      time.Duration
	ErrorAge     time.Duration
}

type outboxService struct {
	repo        domain.OutboxRepository
	logger      *slog.Logger
	retention   time.Duration
	maxAttempts int
	thresholds  OutboxThresholds
}

// NewOutboxService wraps the outbox repository with retention, retry-budget,
// and health policy. Producers call Append/AppendBatch inside the same
// transaction as their aggregate write; the relay owns the rest.
func NewOutboxService(repo domain.OutboxRepository, logger *slog.Logger, retention time.Duration, maxAttempts int, thresholds OutboxThresholds) domain.OutboxService {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &outboxService{
		repo:        repo,
		logger:      logger,
		retention:   retention,
		maxAttempts: maxAttempts,
		thresholds:  thresholds,
	}
}

func (s *outboxService) Append(ctx context.Context, event *domain.OutboxEvent) error {
	if err := validateOutboxEvent(event); err != nil {
		return err
	}
	return s.repo.Append(ctx, event)
}

func (s *outboxService) AppendBatch(ctx context.Context, events []*domain.OutboxEvent) error {
	for _, ev := range events {
		if err := validateOutboxEvent(ev); err != nil {
			return err
		}
	}
	return s.repo.AppendBatch(ctx, events)
}

func validateOutboxEvent(ev *domain.OutboxEvent) error {
	if ev == nil {
		return fmt.Errorf("%w: event is nil", domain.ErrInvalidInput)
	}
	if ev.EventID == "" || ev.EventType == "" || ev.AggregateID == "" || ev.ListID == "" {
		return fmt.Errorf("%w: eventID, eventType, aggregateID, and listID are required", domain.ErrInvalidInput)
	}
	return nil
}

// Pending applies the retry budget: events at or past maxAttempts stay out
// of the relay's reach until ResetFailed re-queues them.
func (s *outboxService) Pending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.Pending(ctx, limit, s.maxAttempts)
}

func (s *outboxService) MarkProcessed(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("%w: eventID is required", domain.ErrInvalidInput)
	}
	return s.repo.MarkProcessed(ctx, eventID)
}

func (s *outboxService) RecordAttemptFailure(ctx context.Context, eventID, errorDetail string) error {
	if eventID == "" {
		return fmt.Errorf("%w: eventID is required", domain.ErrInvalidInput)
	}
	return s.repo.RecordAttemptFailure(ctx, eventID, errorDetail)
}

func (s *outboxService) ResetFailed(ctx context.Context) (int64, error) {
	count, err := s.repo.ResetFailed(ctx, s.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed events: %w", err)
	}
	if count > 0 {
		s.logger.Warn("re-queued outbox events past their retry budget", "count", count)
	}
	return count, nil
}

func (s *outboxService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	count, err := s.repo.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up outbox: %w", err)
	}
	if count > 0 {
		s.logger.Debug("processed outbox events purged", "count", count, "older_than", cutoff)
	}
	return count, nil
}

// HealthCheck degrades healthy -> warning -> error as the pending backlog or
// the age of its oldest event crosses the configured thresholds.
func (s *outboxService) HealthCheck(ctx context.Context) (*domain.OutboxHealth, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox stats: %w", err)
	}
	health := &domain.OutboxHealth{
		Status:           domain.OutboxHealthy,
		PendingCount:     stats.PendingCount,
		OldestPendingAge: stats.OldestPendingAge,
	}
	switch {
	case exceeds(stats.PendingCount, s.thresholds.ErrorPending) || ages(stats.OldestPendingAge, s.thresholds.ErrorAge):
		health.Status = domain.OutboxError
	case exceeds(stats.PendingCount, s.thresholds.WarnPending) || ages(stats.OldestPendingAge, s.thresholds.WarnAge):
		health.Status = domain.OutboxWarning
	}
	return health, nil
}

// A zero threshold disables that check.
func exceeds(value, threshold int) bool {
	return threshold > 0 && value >= threshold
}

func ages(value, threshold time.Duration) bool {
	return threshold > 0 && value >= threshold
}
