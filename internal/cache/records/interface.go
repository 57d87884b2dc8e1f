package records

import (
	"context"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Repository describes keyed storage for service records in the local
// cache. Implementations are backed by a local SQLite database.
type Repository interface {
	// Save inserts a new record or replaces an existing one by id.
	Save(ctx context.Context, record *models.ServiceRecord) error

	// GetByID returns a record by its identifier, or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.ServiceRecord, error)

	// GetAll returns every cached record. Order is not guaranteed.
	GetAll(ctx context.Context) ([]models.ServiceRecord, error)

	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}
