package syncqueue

import (
	"context"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Repository is the durable log of pending mutations awaiting replay
// against the remote gateway. Items survive process restarts.
type Repository interface {
	// Enqueue appends one item. The id is assigned by the caller and
	// must be unique.
	Enqueue(ctx context.Context, item *models.SyncQueueItem) error

	// DrainAll returns every pending item in insertion order without
	// removing anything.
	DrainAll(ctx context.Context) ([]models.SyncQueueItem, error)

	// Remove acknowledges one item after a successful replay.
	Remove(ctx context.Context, id string) error

	// IncrementRetries bumps the retry counter of one item after a
	// failed replay.
	IncrementRetries(ctx context.Context, id string) error

	// Count reports how many items are pending.
	Count(ctx context.Context) (int, error)

	// Clear drops every pending item. Used by cache reset and tests.
	Clear(ctx context.Context) error
}
