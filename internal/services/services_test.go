package services

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// fakeSyncer records invocations instead of talking to a gateway.
type fakeSyncer struct {
	backgroundCalls atomic.Int32
	syncCalls       atomic.Int32
	syncErr         error
	needsSync       bool
	// onSync runs inside SyncWithServer, e.g. to seed the cache like a
	// real download would.
	onSync func(ctx context.Context)
}

func (f *fakeSyncer) SyncWithServer(ctx context.Context) error {
	f.syncCalls.Add(1)
	if f.onSync != nil {
		f.onSync(ctx)
	}
	return f.syncErr
}

func (f *fakeSyncer) SyncInBackground() { f.backgroundCalls.Add(1) }

func (f *fakeSyncer) NeedsSync(ctx context.Context) bool { return f.needsSync }

// fakeGatewayStub gives unused Gateway methods a no-op body so per-test
// fakes only implement what they exercise.
type fakeGatewayStub struct{}

func (fakeGatewayStub) Ping(ctx context.Context) error { return nil }
func (fakeGatewayStub) GetAllServiceRecords(ctx context.Context) ([]models.ServiceRecord, error) {
	return nil, nil
}
func (fakeGatewayStub) AddServiceRecord(ctx context.Context, rec *models.ServiceRecord) (*models.ServiceRecord, error) {
	return rec, nil
}
func (fakeGatewayStub) UpdateServiceRecord(ctx context.Context, id string, rec *models.ServiceRecord) error {
	return nil
}
func (fakeGatewayStub) DeleteServiceRecord(ctx context.Context, id string) error { return nil }
func (fakeGatewayStub) GetAllUsers(ctx context.Context) ([]models.User, error)  { return nil, nil }
func (fakeGatewayStub) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	return user, nil
}
func (fakeGatewayStub) GetAttachments(ctx context.Context, recordID string) ([]models.Attachment, error) {
	return nil, nil
}
func (fakeGatewayStub) AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	return att, nil
}
func (fakeGatewayStub) DeleteAttachment(ctx context.Context, id string) error { return nil }
func (fakeGatewayStub) GetAttachmentFile(ctx context.Context, id string) (*models.AttachmentFile, error) {
	return nil, nil
}
func (fakeGatewayStub) Close() error { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
