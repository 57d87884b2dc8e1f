package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/gateway"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

type AttachmentService interface {
	Upload(ctx context.Context, recordID string, file models.AttachmentFile, uploadedBy string) (*models.Attachment, error)
	GetAllByRecordID(ctx context.Context, recordID string) ([]models.Attachment, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*models.AttachmentFile, error)
}

type attachmentService struct {
	cache   *cache.Cache
	gateway gateway.Gateway
	syncer  Syncer
	logger  logging.Logger
	now     func() time.Time
}

func NewAttachmentService(c *cache.Cache, gw gateway.Gateway, s Syncer, logger logging.Logger) AttachmentService {
	return &attachmentService{cache: c, gateway: gw, syncer: s, logger: logger, now: time.Now}
}

// Upload registers the attachment against an existing record. The cache
// keeps only the metadata; the raw bytes travel in the queue payload
// and live remotely once replayed.
func (s *attachmentService) Upload(ctx context.Context, recordID string, file models.AttachmentFile, uploadedBy string) (*models.Attachment, error) {
	rec, err := s.cache.Records.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if rec == nil {
		return nil, common.ErrorNotFound
	}

	att := &models.Attachment{
		ID:              uuid.NewString(),
		ServiceRecordID: recordID,
		Filename:        file.Filename,
		Mimetype:        file.Mimetype,
		Size:            int64(len(file.Buffer)),
		FileData:        file.Buffer,
		UploadedBy:      uploadedBy,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.cache.Attachments.Save(ctx, att); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	payload, err := json.Marshal(att)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	item := &models.SyncQueueItem{
		ID:         uuid.NewString(),
		Op:         models.OpCreate,
		Table:      models.TableAttachments,
		Payload:    payload,
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.cache.Queue.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue sync item: %w", err)
	}

	s.syncer.SyncInBackground()

	att.FileData = nil
	return att, nil
}

func (s *attachmentService) GetAllByRecordID(ctx context.Context, recordID string) ([]models.Attachment, error) {
	atts, err := s.cache.Attachments.GetAllByRecordID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return atts, nil
}

func (s *attachmentService) Delete(ctx context.Context, id string) error {
	if err := s.cache.Attachments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	payload, err := json.Marshal(models.DeletePayload{ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	item := &models.SyncQueueItem{
		ID:         uuid.NewString(),
		Op:         models.OpDelete,
		Table:      models.TableAttachments,
		Payload:    payload,
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.cache.Queue.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to enqueue sync item: %w", err)
	}

	s.syncer.SyncInBackground()
	return nil
}

// Download fetches the attachment bytes from the gateway. The bytes are
// never cached locally, so this is the one read that requires the
// gateway to be reachable.
func (s *attachmentService) Download(ctx context.Context, id string) (*models.AttachmentFile, error) {
	file, err := s.gateway.GetAttachmentFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	if file == nil {
		return nil, common.ErrorNotFound
	}
	return file, nil
}
