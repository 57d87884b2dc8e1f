package attachments

import (
	"context"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Repository stores attachment metadata in the local cache. File bytes
// are not cached; they live in the remote store and travel through the
// sync queue only while an upload is pending.
type Repository interface {
	// Save inserts or replaces an attachment by id. FileData is never
	// persisted locally.
	Save(ctx context.Context, att *models.Attachment) error

	// GetByID returns an attachment, or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Attachment, error)

	// GetAllByRecordID lists attachments owned by one service record.
	GetAllByRecordID(ctx context.Context, recordID string) ([]models.Attachment, error)

	// Delete removes an attachment. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}
