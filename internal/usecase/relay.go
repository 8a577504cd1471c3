package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"listsync/internal/domain"
)

// EventPublisher is the fanout side of the relay, satisfied by the
// realtime gateway.
type EventPublisher interface {
	Publish(event *domain.SyncEvent) error
}

// Relay drains the durable outbox into the live gateway. Exactly one relay
// runs per process; delivery is at-least-once and ordering within a batch
// follows the outbox's oldest-first read.
type Relay struct {
	outbox       domain.OutboxService
	publisher    EventPublisher
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewRelay(outbox domain.OutboxService, publisher EventPublisher, logger *slog.Logger, pollInterval time.Duration, batchSize int) *Relay {
	return &Relay{
		outbox:       outbox,
		publisher:    publisher,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Run polls until ctx is cancelled. Poll errors are logged, never fatal:
// the next tick retries from durable state.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "poll_interval", r.pollInterval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.DrainOnce(ctx); err != nil {
				r.logger.Error("outbox drain failed", "err", err)
			}
		}
	}
}

// DrainOnce processes a single batch of pending events and reports how many
// were delivered. A failed publish records the attempt against that event
// and moves on, so one poisoned event cannot block the batch.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	delivered := 0
	for _, event := range pending {
		if err := r.publisher.Publish(domain.SyncEventFromOutbox(event)); err != nil {
			r.logger.Warn("failed to publish event",
				"event_id", event.EventID, "event_type", event.EventType, "err", err)
			if recErr := r.outbox.RecordAttemptFailure(ctx, event.EventID, err.Error()); recErr != nil {
				r.logger.Error("failed to record attempt failure", "event_id", event.EventID, "err", recErr)
			}
			continue
		}
		if err := r.outbox.MarkProcessed(ctx, event.EventID); err != nil {
			// Delivered but not marked: the event will be re-delivered on the
			// next poll, which subscribers must tolerate anyway.
			r.logger.Error("failed to mark event processed", "event_id", event.EventID, "err", err)
			continue
		}
		delivered++
	}

	r.logger.Debug("outbox batch drained", "pending", len(pending), "delivered", delivered)
	return delivered, nil
}
