package users

import (
	"context"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// Repository stores authentication principals in the local cache.
type Repository interface {
	// Save inserts or replaces a user by id.
	Save(ctx context.Context, user *models.User) error

	// GetByID returns a user, or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername returns a user by unique username, or (nil, nil) when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetAll lists every cached user.
	GetAll(ctx context.Context) ([]models.User, error)

	// Delete removes a user. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}
