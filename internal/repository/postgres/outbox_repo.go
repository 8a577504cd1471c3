package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"listsync/internal/domain"
)

type outboxRepository struct {
	DB *sql.DB
}

// NewOutboxRepository returns a domain.OutboxRepository implemented with
// Postgres. Append and AppendBatch join the transaction carried on the
// context, which is how an event becomes atomic with the aggregate write
// that produced it.
func NewOutboxRepository(db *sql.DB) domain.OutboxRepository {
	return &outboxRepository{DB: db}
}

const outboxColumns = `id, event_id, event_type, event_version, aggregate_id, aggregate_type, list_id, actor_id, payload, occurred_at, processed, attempts, last_error, last_attempt_at, processed_at`

func (r *outboxRepository) Append(ctx context.Context, ev *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (event_id, event_type, event_version, aggregate_id, aggregate_type, list_id, actor_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		ev.EventID, ev.EventType, ev.EventVersion, ev.AggregateID, ev.AggregateType,
		ev.ListID, ev.ActorID, []byte(ev.Payload), ev.OccurredAt,
	).Scan(&ev.ID)
}

func (r *outboxRepository) AppendBatch(ctx context.Context, events []*domain.OutboxEvent) error {
	for _, ev := range events {
		if err := r.Append(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Pending excludes events that exhausted their retry budget; they no longer
// reach the relay until ResetFailed zeroes their counters.
func (r *outboxRepository) Pending(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_events
		WHERE processed = FALSE AND attempts < $1
		ORDER BY occurred_at ASC, id ASC
		LIMIT $2
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		ev, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func scanOutboxEvent(rows *sql.Rows) (*domain.OutboxEvent, error) {
	ev := &domain.OutboxEvent{}
	var actorNull, lastErrNull sql.NullString
	var lastAttemptNull, processedAtNull sql.NullTime
	var payload []byte
	err := rows.Scan(
		&ev.ID, &ev.EventID, &ev.EventType, &ev.EventVersion, &ev.AggregateID, &ev.AggregateType,
		&ev.ListID, &actorNull, &payload, &ev.OccurredAt,
		&ev.Processed, &ev.Attempts, &lastErrNull, &lastAttemptNull, &processedAtNull,
	)
	if err != nil {
		return nil, err
	}
	ev.Payload = payload
	if actorNull.Valid {
		ev.ActorID = actorNull.String
	}
	if lastErrNull.Valid {
		ev.LastError = lastErrNull.String
	}
	if lastAttemptNull.Valid {
		ev.LastAttemptAt = &lastAttemptNull.Time
	}
	if processedAtNull.Valid {
		ev.ProcessedAt = &processedAtNull.Time
	}
	return ev, nil
}

// MarkProcessed is idempotent: marking an already-processed event matches no
// rows and is a no-op, which also makes concurrent relays safe.
func (r *outboxRepository) MarkProcessed(ctx context.Context, eventID string) error {
	query := `
		UPDATE outbox_events
		SET processed = TRUE, processed_at = NOW()
		WHERE event_id = $1 AND processed = FALSE
	`
	_, err := q(ctx, r.DB).ExecContext(ctx, query, eventID)
	return err
}

func (r *outboxRepository) MarkManyProcessed(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	query := `
		UPDATE outbox_events
		SET processed = TRUE, processed_at = NOW()
		WHERE event_id = ANY($1) AND processed = FALSE
	`
	_, err := q(ctx, r.DB).ExecContext(ctx, query, pq.Array(eventIDs))
	return err
}

func (r *outboxRepository) RecordAttemptFailure(ctx context.Context, eventID, errorDetail string) error {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1, last_error = $2, last_attempt_at = NOW()
		WHERE event_id = $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, eventID, errorDetail)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) ResetFailed(ctx context.Context, maxAttempts int) (int64, error) {
	query := `
		UPDATE outbox_events
		SET attempts = 0, last_error = NULL
		WHERE processed = FALSE AND attempts >= $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, maxAttempts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Cleanup deletes processed rows past retention. Unprocessed rows survive
// regardless of age: only processed is authoritative evidence of delivery.
func (r *outboxRepository) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE processed = TRUE AND processed_at < $1
	`
	res, err := q(ctx, r.DB).ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *outboxRepository) Stats(ctx context.Context) (*domain.OutboxStats, error) {
	query := `
		SELECT COUNT(*), MIN(occurred_at)
		FROM outbox_events
		WHERE processed = FALSE
	`
	var count int
	var oldestNull sql.NullTime
	err := q(ctx, r.DB).QueryRowContext(ctx, query).Scan(&count, &oldestNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.OutboxStats{}, nil
		}
		return nil, err
	}
	stats := &domain.OutboxStats{PendingCount: count}
	if oldestNull.Valid {
		stats.OldestPendingAge = time.Since(oldestNull.Time)
	}
	return stats, nil
}
