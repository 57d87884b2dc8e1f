// Package gateway defines the boundary to the authoritative remote
// store. The sync engine and the record services only ever see the
// Gateway interface; the Postgres implementation lives alongside it.
package gateway

import (
	"context"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Gateway is the remote collaborator the sync engine replays queued
// mutations against and pulls authoritative data from. All failures are
// network/IO errors from the caller's point of view.
type Gateway interface {
	// Ping reports whether the gateway is reachable. Callers consult it
	// before attempting network-dependent paths.
	Ping(ctx context.Context) error

	GetAllServiceRecords(ctx context.Context) ([]models.ServiceRecord, error)
	AddServiceRecord(ctx context.Context, rec *models.ServiceRecord) (*models.ServiceRecord, error)
	UpdateServiceRecord(ctx context.Context, id string, rec *models.ServiceRecord) error
	DeleteServiceRecord(ctx context.Context, id string) error

	GetAllUsers(ctx context.Context) ([]models.User, error)
	AddUser(ctx context.Context, user *models.User) (*models.User, error)

	GetAttachments(ctx context.Context, recordID string) ([]models.Attachment, error)
	AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
	GetAttachmentFile(ctx context.Context, id string) (*models.AttachmentFile, error)

	Close() error
}
