package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

type AuthService interface {
	// Register creates a user with a bcrypt-hashed password and queues
	// it for upload.
	Register(ctx context.Context, username, password, name string, role models.Role) (*models.User, error)

	// Authenticate verifies credentials against the local user table,
	// pulling from the gateway first when the table is empty.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// GetAllUsers lists cached users with their hashes blanked.
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type authService struct {
	cache  *cache.Cache
	syncer Syncer
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(c *cache.Cache, s Syncer, logger logging.Logger) AuthService {
	return &authService{cache: c, syncer: s, logger: logger, now: time.Now}
}

func (s *authService) Register(ctx context.Context, username, password, name string, role models.Role) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	existing, err := s.cache.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, common.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if user.Role == "" {
		user.Role = models.RoleTechnician
	}

	if err := s.cache.Users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	item := &models.SyncQueueItem{
		ID:         uuid.NewString(),
		Op:         models.OpCreate,
		Table:      models.TableUsers,
		Payload:    payload,
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.cache.Queue.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue sync item: %w", err)
	}

	s.syncer.SyncInBackground()

	out := *user
	out.PasswordHash = ""
	return &out, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.cache.Users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// lookup reads the user locally and, on a miss, tries one pull so a
// fresh install against an existing backend can still log in.
func (s *authService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.cache.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if err := s.syncer.SyncWithServer(ctx); err != nil {
		s.logger.Warn(ctx, "could not refresh users before login", "error", err)
		return nil, nil
	}

	user, err = s.cache.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
