package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewAuthService(c, syn, testLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, "maria", "s3cret", "Maria Silva", models.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.PasswordHash, "hash must not leak to the caller")

	// The cache stores a bcrypt hash, never the plaintext.
	stored, err := c.Users.GetByUsername(ctx, "maria")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.TableUsers, items[0].Table)

	var payload models.User
	require.NoError(t, json.Unmarshal(items[0].Payload, &payload))
	assert.Equal(t, stored.PasswordHash, payload.PasswordHash)

	authed, err := svc.Authenticate(ctx, "maria", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.Empty(t, authed.PasswordHash)
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	c := openTestCache(t)
	svc := NewAuthService(c, &fakeSyncer{}, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "maria", "s3cret", "Maria", models.RoleTechnician)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "maria", "other", "Other Maria", models.RoleTechnician)
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestAuthService_RegisterDefaultsRole(t *testing.T) {
	c := openTestCache(t)
	svc := NewAuthService(c, &fakeSyncer{}, testLogger())

	user, err := svc.Register(context.Background(), "joao", "pw", "Joao", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)
}

func TestAuthService_AuthenticateWrongPassword(t *testing.T) {
	c := openTestCache(t)
	svc := NewAuthService(c, &fakeSyncer{}, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "maria", "s3cret", "Maria", models.RoleTechnician)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "maria", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthService_AuthenticateUnknownUser(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewAuthService(c, syn, testLogger())

	_, err := svc.Authenticate(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, int32(1), syn.syncCalls.Load(), "a miss should trigger one pull")
}

func TestAuthService_GetAllUsersBlanksHashes(t *testing.T) {
	c := openTestCache(t)
	svc := NewAuthService(c, &fakeSyncer{}, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "maria", "s3cret", "Maria", models.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "joao", "pw", "Joao", models.RoleTechnician)
	require.NoError(t, err)

	users, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestAuthService_AuthenticatePullsOnFreshInstall(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	syn := &fakeSyncer{}
	syn.onSync = func(ctx context.Context) {
		_ = c.Users.Save(ctx, &models.User{
			ID:           "u1",
			Username:     "maria",
			PasswordHash: string(hash),
			Role:         models.RoleTechnician,
		})
	}
	svc := NewAuthService(c, syn, testLogger())

	user, err := svc.Authenticate(ctx, "maria", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
