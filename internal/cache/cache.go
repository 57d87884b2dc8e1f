// Package cache owns the on-disk representation of the four local
// collections (service records, attachments, users, sync queue) plus
// the metadata slot. It is pure storage; business rules live in the
// services and the sync engine.
package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/attachments"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/metadata"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/migrations"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/records"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/syncqueue"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache/users"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/dbx"
)

// Cache bundles the local store repositories over one SQLite database.
// Construct it with Open; every instance is independent, which keeps
// tests isolated from each other.
type Cache struct {
	db *sql.DB

	Records     records.Repository
	Attachments attachments.Repository
	Users       users.Repository
	Queue       syncqueue.Repository
	Metadata    metadata.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local cache database at dsn,
// runs migrations and wires the repositories.
func Open(ctx context.Context, dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	return &Cache{
		db:          db,
		Records:     records.NewSQLiteRepository(db),
		Attachments: attachments.NewSQLiteRepository(db),
		Users:       users.NewSQLiteRepository(db),
		Queue:       syncqueue.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}, nil
}

// Reset clears every collection in a single transaction. Used by
// logout/cache-reset and by tests.
func (c *Cache) Reset(ctx context.Context) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"service_records", "attachments", "users", "sync_queue", "metadata"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// DB exposes the underlying handle for callers that need to compose
// repository calls in one transaction via dbx.WithTx.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
