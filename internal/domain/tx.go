package domain

import "context"

// TxManager runs fn inside a single durable transaction. Repository calls
// made with the context passed to fn join that transaction; if fn returns an
// error the transaction rolls back and none of its writes (including outbox
// appends) are observable.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
