package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Event types recorded in the outbox and pushed to live subscribers.
const (
	EventListCreated = "list.created"
	EventListUpdated = "list.updated"
	EventListDeleted = "list.deleted"
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
	EventItemMarked  = "item.marked"
)

// Aggregate types for outbox events.
const (
	AggregateList = "list"
	AggregateItem = "item"
)

// OutboxEvent is a durable record of a domain event, written in the same
// transaction as the state change it describes and relayed to live
// subscribers asynchronously. EventID is the producer-assigned idempotency
// key; Processed and Attempts are mutated only by the relay.
type OutboxEvent struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	ListID        string          `json:"list_id"`
	ActorID       string          `json:"actor_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Processed     bool            `json:"processed"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error,omitempty"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

// OutboxRepository defines durable storage for outbox events. Append and
// AppendBatch participate in the caller's transaction when one is carried on
// the context. Pending returns unprocessed events oldest first, excluding
// events whose attempts have reached maxAttempts; those stay parked until
// ResetFailed re-queues them. MarkProcessed is idempotent under concurrent
// calls for the same event.
type OutboxRepository interface {
	Append(ctx context.Context, event *OutboxEvent) error
	AppendBatch(ctx context.Context, events []*OutboxEvent) error
	Pending(ctx context.Context, limit, maxAttempts int) ([]*OutboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkManyProcessed(ctx context.Context, eventIDs []string) error
	RecordAttemptFailure(ctx context.Context, eventID, errorDetail string) error
	// ResetFailed re-queues events whose attempts reached maxAttempts by
	// zeroing their counters, and returns the number of rows affected.
	ResetFailed(ctx context.Context, maxAttempts int) (int64, error)
	// Cleanup deletes processed rows older than the cutoff. Unprocessed rows
	// are never deleted regardless of age.
	Cleanup(ctx context.Context, olderThan time.Time) (int64, error)
	Stats(ctx context.Context) (*OutboxStats, error)
}

// OutboxStats is the raw backlog measurement behind the health check.
type OutboxStats struct {
	PendingCount     int           `json:"pending_count"`
	OldestPendingAge time.Duration `json:"oldest_pending_age"`
}

// OutboxHealthStatus is the coarse operator-facing state of the outbox backlog.
type OutboxHealthStatus string

const (
	OutboxHealthy OutboxHealthStatus = "healthy"
	OutboxWarning OutboxHealthStatus = "warning"
	OutboxError   OutboxHealthStatus = "error"
)

// OutboxHealth is the health-check result for the outbox. Status degrades
// healthy -> warning -> error as the backlog or its age crosses the
// configured thresholds; it is the signal used to detect a stalled relay.
// swagger:model OutboxHealth
type OutboxHealth struct {
	Status           OutboxHealthStatus `json:"status"`
	PendingCount     int                `json:"pending_count"`
	OldestPendingAge time.Duration      `json:"oldest_pending_age"`
}

// OutboxService is the producer- and operator-facing surface over the outbox.
type OutboxService interface {
	Append(ctx context.Context, event *OutboxEvent) error
	AppendBatch(ctx context.Context, events []*OutboxEvent) error
	Pending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	RecordAttemptFailure(ctx context.Context, eventID, errorDetail string) error
	ResetFailed(ctx context.Context) (int64, error)
	Cleanup(ctx context.Context) (int64, error)
	HealthCheck(ctx context.Context) (*OutboxHealth, error)
}
