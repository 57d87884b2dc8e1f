// Package syncer reconciles the local cache with the remote gateway:
// a download phase pulls authoritative data into the cache, an upload
// phase drains the pending-mutation queue, and a staleness policy
// decides when a new pull is due.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/gateway"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

const (
	// DefaultStaleAfter is how long a successful pull stays fresh.
	DefaultStaleAfter = 10 * time.Minute

	// DefaultMaxRetries is how many failed replays a queue item gets
	// before it is dropped.
	DefaultMaxRetries = 3
)

// Status is a snapshot of the sync state for the UI's status indicator.
type Status struct {
	LastSync     time.Time
	PendingItems int
	Online       bool
}

// Engine coordinates download and upload passes. At most one pass runs
// at a time; a call made while another is in flight returns immediately
// without scheduling a follow-up.
type Engine struct {
	cache   *cache.Cache
	gateway gateway.Gateway
	logger  logging.Logger

	staleAfter time.Duration
	maxRetries int
	inFlight   atomic.Bool

	// now is a seam for the staleness clock in tests.
	now func() time.Time

	// onError receives failures from background passes instead of the
	// caller's stack.
	onError func(error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(e *Engine) { e.staleAfter = d }
}

// WithMaxRetries overrides the per-item replay cap.
func WithMaxRetries(n int) Option {
	return func(e *Engine) { e.maxRetries = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithErrorCallback registers a sink for background sync failures.
func WithErrorCallback(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

// New creates an Engine over the given cache and gateway.
func New(c *cache.Cache, gw gateway.Gateway, logger logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache:      c,
		gateway:    gw,
		logger:     logger,
		staleAfter: DefaultStaleAfter,
		maxRetries: DefaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncWithServer runs one full reconciliation pass: download, then
// upload, then stamping of the last-sync time. If another pass is
// already in flight the call is a no-op. A download failure aborts the
// pass and propagates; upload failures are isolated per item and never
// abort the pass.
func (e *Engine) SyncWithServer(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer e.inFlight.Store(false)

	if err := e.gateway.Ping(ctx); err != nil {
		return err
	}

	if err := e.download(ctx); err != nil {
		return fmt.Errorf("download phase failed: %w", err)
	}

	e.upload(ctx)

	if err := e.setLastSync(ctx); err != nil {
		return err
	}
	return nil
}

// SyncInBackground fires a pass without blocking the caller. Failures
// go to the logger and the error callback, never to the caller.
func (e *Engine) SyncInBackground() {
	go func() {
		if err := e.SyncWithServer(context.Background()); err != nil {
			e.reportError(err)
		}
	}()
}

// RunAutoSync periodically drains the queue until ctx is cancelled.
// A tick is skipped when there is nothing pending and the cache is
// still fresh.
func (e *Engine) RunAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := e.cache.Queue.Count(ctx)
			if err != nil {
				e.reportError(err)
				continue
			}
			if pending == 0 && !e.NeedsSync(ctx) {
				continue
			}
			if err := e.SyncWithServer(ctx); err != nil {
				e.reportError(err)
			}
		}
	}
}

// NeedsSync reports whether a pull is due: true when no successful sync
// has ever happened or when the last one is older than the threshold.
func (e *Engine) NeedsSync(ctx context.Context) bool {
	last, err := e.LastSync(ctx)
	if err != nil || last.IsZero() {
		return true
	}
	return e.now().Sub(last) > e.staleAfter
}

// LastSync returns the timestamp of the last successful pass, or the
// zero time when none has happened yet.
func (e *Engine) LastSync(ctx context.Context) (time.Time, error) {
	raw, err := e.cache.Metadata.Get(ctx, common.MetadataKeyLastSync)
	if err != nil {
		return time.Time{}, err
	}
	if raw == nil {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt lastSync value: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Status snapshots the sync state.
func (e *Engine) Status(ctx context.Context) Status {
	last, _ := e.LastSync(ctx)
	pending, _ := e.cache.Queue.Count(ctx)
	return Status{
		LastSync:     last,
		PendingItems: pending,
		Online:       e.gateway.Ping(ctx) == nil,
	}
}

func (e *Engine) setLastSync(ctx context.Context) error {
	ms := strconv.FormatInt(e.now().UnixMilli(), 10)
	return e.cache.Metadata.Set(ctx, common.MetadataKeyLastSync, []byte(ms))
}

// download pulls every record, user and attachment from the gateway and
// upserts them into the cache. It is a full-replace-by-upsert: entities
// deleted remotely are left in place locally, which keeps unsynced
// local edits from being destroyed by a pull.
func (e *Engine) download(ctx context.Context) error {
	var (
		recs  []models.ServiceRecord
		atts  []models.Attachment
		users []models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = e.gateway.GetAllServiceRecords(gctx)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			recAtts, err := e.gateway.GetAttachments(gctx, rec.ID)
			if err != nil {
				return err
			}
			atts = append(atts, recAtts...)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = e.gateway.GetAllUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range recs {
		if err := e.cache.Records.Save(ctx, &recs[i]); err != nil {
			return err
		}
	}
	for i := range atts {
		if err := e.cache.Attachments.Save(ctx, &atts[i]); err != nil {
			return err
		}
	}
	for i := range users {
		if err := e.cache.Users.Save(ctx, &users[i]); err != nil {
			return err
		}
	}

	e.logger.Debug(ctx, "download phase complete",
		"records", len(recs), "attachments", len(atts), "users", len(users))
	return nil
}

// upload drains the queue in insertion order. Each item is committed or
// left for retry independently; one failing item never blocks the rest.
func (e *Engine) upload(ctx context.Context) {
	items, err := e.cache.Queue.DrainAll(ctx)
	if err != nil {
		e.reportError(fmt.Errorf("failed to read sync queue: %w", err))
		return
	}
	if len(items) == 0 {
		return
	}

	var replayed, failed int
	for _, item := range items {
		if item.Retries >= e.maxRetries {
			e.logger.Warn(ctx, "dropping sync item after too many attempts",
				"id", item.ID, "table", item.Table, "op", item.Op, "retries", item.Retries)
			if err := e.cache.Queue.Remove(ctx, item.ID); err != nil {
				e.reportError(err)
			}
			failed++
			continue
		}

		if err := e.dispatch(ctx, item); err != nil {
			e.logger.Warn(ctx, "sync item failed, will retry",
				"id", item.ID, "table", item.Table, "op", item.Op, "error", err)
			if err := e.cache.Queue.IncrementRetries(ctx, item.ID); err != nil {
				e.reportError(err)
			}
			failed++
			continue
		}

		if err := e.cache.Queue.Remove(ctx, item.ID); err != nil {
			e.reportError(err)
			continue
		}
		replayed++
	}

	e.logger.Info(ctx, "upload phase complete", "replayed", replayed, "failed", failed)
}

// dispatch replays a single queued mutation against the gateway.
func (e *Engine) dispatch(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Table {
	case models.TableServiceRecords:
		return e.dispatchRecord(ctx, item)
	case models.TableAttachments:
		return e.dispatchAttachment(ctx, item)
	case models.TableUsers:
		return e.dispatchUser(ctx, item)
	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownTable, item.Table)
	}
}

func (e *Engine) dispatchRecord(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Op {
	case models.OpCreate, models.OpUpdate:
		var rec models.ServiceRecord
		if err := json.Unmarshal(item.Payload, &rec); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		if item.Op == models.OpCreate {
			_, err := e.gateway.AddServiceRecord(ctx, &rec)
			return err
		}
		return e.gateway.UpdateServiceRecord(ctx, rec.ID, &rec)
	case models.OpDelete:
		var p models.DeletePayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		return e.gateway.DeleteServiceRecord(ctx, p.ID)
	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownOperation, item.Op)
	}
}

func (e *Engine) dispatchAttachment(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Op {
	case models.OpCreate:
		var att models.Attachment
		if err := json.Unmarshal(item.Payload, &att); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		_, err := e.gateway.AddAttachment(ctx, &att)
		return err
	case models.OpDelete:
		var p models.DeletePayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		return e.gateway.DeleteAttachment(ctx, p.ID)
	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownOperation, item.Op)
	}
}

func (e *Engine) dispatchUser(ctx context.Context, item models.SyncQueueItem) error {
	switch item.Op {
	case models.OpCreate:
		var u models.User
		if err := json.Unmarshal(item.Payload, &u); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		_, err := e.gateway.AddUser(ctx, &u)
		return err
	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownOperation, item.Op)
	}
}

func (e *Engine) reportError(err error) {
	e.logger.Warn(context.Background(), "background sync error", "error", err)
	if e.onError != nil {
		e.onError(err)
	}
}
