package syncqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/dbx"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Enqueue appends an item to the log. Enqueue timestamps are stored as
// epoch milliseconds; rowid breaks ties for items enqueued in the same
// millisecond.
func (r *SQLiteRepository) Enqueue(ctx context.Context, item *models.SyncQueueItem) error {
	query := `INSERT INTO sync_queue (id, op, table_name, payload, retries, enqueued_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, string(item.Op), string(item.Table), []byte(item.Payload),
		item.Retries, item.EnqueuedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to enqueue sync item: %w", err)
	}
	return nil
}

// DrainAll is a non-destructive read of every pending item, ordered by
// insertion.
func (r *SQLiteRepository) DrainAll(ctx context.Context) ([]models.SyncQueueItem, error) {
	query := `SELECT id, op, table_name, payload, retries, enqueued_at
		FROM sync_queue ORDER BY enqueued_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync queue: %w", err)
	}
	defer rows.Close()

	var result []models.SyncQueueItem
	for rows.Next() {
		var (
			item       models.SyncQueueItem
			op         string
			table      string
			payload    []byte
			enqueuedAt int64
		)
		if err := rows.Scan(&item.ID, &op, &table, &payload, &item.Retries, &enqueuedAt); err != nil {
			return nil, err
		}
		item.Op = models.SyncOp(op)
		item.Table = models.SyncTable(table)
		item.Payload = payload
		item.EnqueuedAt = time.UnixMilli(enqueuedAt).UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove acknowledges one item. Removing an absent id is not an error.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove sync item: %w", err)
	}
	return nil
}

// IncrementRetries bumps the retry counter for one item.
func (r *SQLiteRepository) IncrementRetries(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sync_queue SET retries = retries + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}
	return nil
}

// Count reports the number of pending items.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return n, nil
}

// Clear drops every pending item.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue`)
	if err != nil {
		return fmt.Errorf("failed to clear sync queue: %w", err)
	}
	return nil
}
