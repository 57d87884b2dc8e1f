// Package services implements the application operations the UI layer
// calls: every write lands in the local cache first, is enqueued for
// replay, and then a background sync is kicked off. Reads come from the
// cache and degrade gracefully when the gateway is unreachable.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Syncer is the part of the sync engine the services need.
type Syncer interface {
	SyncWithServer(ctx context.Context) error
	SyncInBackground()
	NeedsSync(ctx context.Context) bool
}

// RecordFilter narrows a record listing. Zero values match everything.
type RecordFilter struct {
	// Search matches case-insensitively against order number, client,
	// equipment and reported issue.
	Search         string
	Technician     string
	AssistanceType models.AssistanceType
	CreatedBy      string
}

type RecordService interface {
	Create(ctx context.Context, rec *models.ServiceRecord) (*models.ServiceRecord, error)
	GetAll(ctx context.Context, filter RecordFilter) ([]models.ServiceRecord, error)
	GetByID(ctx context.Context, id string) (*models.ServiceRecord, error)
	Update(ctx context.Context, id string, rec *models.ServiceRecord) (*models.ServiceRecord, error)
	Delete(ctx context.Context, id string) error
}

type recordService struct {
	cache  *cache.Cache
	syncer Syncer
	logger logging.Logger
	now    func() time.Time
}

func NewRecordService(c *cache.Cache, s Syncer, logger logging.Logger) RecordService {
	return &recordService{cache: c, syncer: s, logger: logger, now: time.Now}
}

// Create stores the record locally, queues it for upload and fires a
// background sync. The caller gets the stored record back immediately;
// replication happens later.
func (s *recordService) Create(ctx context.Context, rec *models.ServiceRecord) (*models.ServiceRecord, error) {
	if rec.CallOpeningDate == "" {
		return nil, fmt.Errorf("call opening date is required")
	}

	now := s.now().UTC()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Normalize()

	if err := s.cache.Records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	if err := s.enqueue(ctx, models.OpCreate, rec); err != nil {
		return nil, err
	}

	s.syncer.SyncInBackground()
	return rec, nil
}

// GetAll lists records from the cache, refreshing it first when stale.
// A refresh failure is logged and the cached data is served anyway.
func (s *recordService) GetAll(ctx context.Context, filter RecordFilter) ([]models.ServiceRecord, error) {
	s.refreshIfStale(ctx)

	recs, err := s.cache.Records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := recs[:0]
	for _, rec := range recs {
		if filter.matches(&rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// GetByID reads from the cache; on a miss it tries one pull before
// reporting the record absent (nil, nil).
func (s *recordService) GetByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	s.refreshIfStale(ctx)

	rec, err := s.cache.Records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	if err := s.syncer.SyncWithServer(ctx); err != nil {
		s.logger.Warn(ctx, "refresh failed, serving cached data", "error", err)
		return nil, nil
	}

	rec, err = s.cache.Records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Update replaces the mutable fields of an existing record. Creation
// metadata is preserved and UpdatedAt moves strictly forward even when
// the wall clock does not.
func (s *recordService) Update(ctx context.Context, id string, rec *models.ServiceRecord) (*models.ServiceRecord, error) {
	existing, err := s.cache.Records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if existing == nil {
		return nil, common.ErrorNotFound
	}

	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.CreatedBy = existing.CreatedBy
	rec.UpdatedAt = s.now().UTC()
	if !rec.UpdatedAt.After(existing.UpdatedAt) {
		rec.UpdatedAt = existing.UpdatedAt.Add(time.Millisecond)
	}
	rec.Normalize()

	if err := s.cache.Records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	if err := s.enqueue(ctx, models.OpUpdate, rec); err != nil {
		return nil, err
	}

	s.syncer.SyncInBackground()
	return rec, nil
}

// Delete removes the record locally and queues the deletion. Local
// attachment metadata is left in place; the remote store cascades the
// delete and the next pull reflects it. Deleting an unknown id is not
// an error.
func (s *recordService) Delete(ctx context.Context, id string) error {
	if err := s.cache.Records.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	payload, err := json.Marshal(models.DeletePayload{ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := s.enqueueRaw(ctx, models.OpDelete, models.TableServiceRecords, payload); err != nil {
		return err
	}

	s.syncer.SyncInBackground()
	return nil
}

func (s *recordService) enqueue(ctx context.Context, op models.SyncOp, rec *models.ServiceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return s.enqueueRaw(ctx, op, models.TableServiceRecords, payload)
}

func (s *recordService) enqueueRaw(ctx context.Context, op models.SyncOp, table models.SyncTable, payload []byte) error {
	item := &models.SyncQueueItem{
		ID:         uuid.NewString(),
		Op:         op,
		Table:      table,
		Payload:    payload,
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.cache.Queue.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to enqueue sync item: %w", err)
	}
	return nil
}

func (s *recordService) refreshIfStale(ctx context.Context) {
	if !s.syncer.NeedsSync(ctx) {
		return
	}
	if err := s.syncer.SyncWithServer(ctx); err != nil {
		s.logger.Warn(ctx, "refresh failed, serving cached data", "error", err)
	}
}

func (f *RecordFilter) matches(rec *models.ServiceRecord) bool {
	if f.Technician != "" && rec.Technician != f.Technician {
		return false
	}
	if f.AssistanceType != "" && rec.AssistanceType != f.AssistanceType {
		return false
	}
	if f.CreatedBy != "" && rec.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(strings.Join([]string{
			rec.OrderNumber, rec.Client, rec.Equipment, rec.ReportedIssue,
		}, "\n"))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
