package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

func TestRecordService_Create(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewRecordService(c, syn, testLogger())
	ctx := context.Background()

	rec, err := svc.Create(ctx, &models.ServiceRecord{
		OrderNumber:     "OF-123",
		Client:          "Prefeitura de Cascavel",
		CallOpeningDate: "2025-04-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.NotNil(t, rec.AdditionalCosts, "normalization must fill list defaults")

	// Durability ordering: cached and enqueued before the call returned.
	stored, err := c.Records.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.OpCreate, items[0].Op)
	assert.Equal(t, models.TableServiceRecords, items[0].Table)

	var payload models.ServiceRecord
	require.NoError(t, json.Unmarshal(items[0].Payload, &payload))
	assert.Equal(t, rec.ID, payload.ID)
	assert.Equal(t, "OF-123", payload.OrderNumber)

	assert.Equal(t, int32(1), syn.backgroundCalls.Load())
}

func TestRecordService_CreateRequiresCallOpeningDate(t *testing.T) {
	c := openTestCache(t)
	svc := NewRecordService(c, &fakeSyncer{}, testLogger())

	_, err := svc.Create(context.Background(), &models.ServiceRecord{OrderNumber: "OF-1"})
	require.Error(t, err)

	n, err := c.Queue.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecordService_GetAllFilters(t *testing.T) {
	c := openTestCache(t)
	svc := NewRecordService(c, &fakeSyncer{}, testLogger())
	ctx := context.Background()

	seed := []models.ServiceRecord{
		{ID: "r1", OrderNumber: "OF-1", Client: "Transportes Alfa", Technician: "maria", AssistanceType: models.AssistanceCourtesy, CallOpeningDate: "2025-01-01"},
		{ID: "r2", OrderNumber: "OF-2", Client: "Beta Ltda", Technician: "joao", AssistanceType: models.AssistanceRegular, CallOpeningDate: "2025-01-02"},
		{ID: "r3", OrderNumber: "OF-3", Client: "Transportes Alfa", Technician: "joao", AssistanceType: models.AssistanceRegular, CallOpeningDate: "2025-01-03"},
	}
	for i := range seed {
		require.NoError(t, c.Records.Save(ctx, &seed[i]))
	}

	all, err := svc.GetAll(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byTech, err := svc.GetAll(ctx, RecordFilter{Technician: "joao"})
	require.NoError(t, err)
	assert.Len(t, byTech, 2)

	byType, err := svc.GetAll(ctx, RecordFilter{AssistanceType: models.AssistanceCourtesy})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "r1", byType[0].ID)

	bySearch, err := svc.GetAll(ctx, RecordFilter{Search: "alfa"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)
}

func TestRecordService_GetAllRefreshesWhenStale(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{needsSync: true}
	syn.onSync = func(ctx context.Context) {
		_ = c.Records.Save(ctx, &models.ServiceRecord{ID: "remote", CallOpeningDate: "2025-01-01"})
	}
	svc := NewRecordService(c, syn, testLogger())

	recs, err := svc.GetAll(context.Background(), RecordFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "remote", recs[0].ID)
	assert.Equal(t, int32(1), syn.syncCalls.Load())
}

func TestRecordService_GetAllServesCacheWhenRefreshFails(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Records.Save(ctx, &models.ServiceRecord{ID: "r1", CallOpeningDate: "2025-01-01"}))

	syn := &fakeSyncer{needsSync: true, syncErr: common.ErrGatewayUnavailable}
	svc := NewRecordService(c, syn, testLogger())

	recs, err := svc.GetAll(ctx, RecordFilter{})
	require.NoError(t, err, "connectivity problems must not surface on reads")
	assert.Len(t, recs, 1)
}

func TestRecordService_GetByIDAbsent(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewRecordService(c, syn, testLogger())

	rec, err := svc.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, int32(1), syn.syncCalls.Load(), "a miss should trigger one pull")
}

func TestRecordService_GetByIDRetriesAfterPull(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	syn.onSync = func(ctx context.Context) {
		_ = c.Records.Save(ctx, &models.ServiceRecord{ID: "remote", CallOpeningDate: "2025-01-01"})
	}
	svc := NewRecordService(c, syn, testLogger())

	rec, err := svc.GetByID(context.Background(), "remote")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "remote", rec.ID)
}

func TestRecordService_Update(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewRecordService(c, syn, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.ServiceRecord{
		OrderNumber:     "OF-9",
		CallOpeningDate: "2025-05-01",
		CreatedBy:       "maria",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &models.ServiceRecord{
		OrderNumber:     "OF-9",
		CallOpeningDate: "2025-05-01",
		Equipment:       "Betoneira 400L",
		CreatedBy:       "someone-else",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Betoneira 400L", updated.Equipment)
	assert.Equal(t, "maria", updated.CreatedBy, "creation metadata is immutable")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.OpUpdate, items[1].Op)
}

func TestRecordService_UpdateMonotonicTimestamp(t *testing.T) {
	c := openTestCache(t)
	svc := NewRecordService(c, &fakeSyncer{}, testLogger()).(*recordService)
	ctx := context.Background()

	// Frozen clock: UpdatedAt must still move forward on every update.
	frozen := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	created, err := svc.Create(ctx, &models.ServiceRecord{CallOpeningDate: "2025-05-01"})
	require.NoError(t, err)

	u1, err := svc.Update(ctx, created.ID, &models.ServiceRecord{CallOpeningDate: "2025-05-01"})
	require.NoError(t, err)
	assert.True(t, u1.UpdatedAt.After(created.UpdatedAt))

	u2, err := svc.Update(ctx, created.ID, &models.ServiceRecord{CallOpeningDate: "2025-05-01"})
	require.NoError(t, err)
	assert.True(t, u2.UpdatedAt.After(u1.UpdatedAt))
}

func TestRecordService_UpdateAbsent(t *testing.T) {
	c := openTestCache(t)
	svc := NewRecordService(c, &fakeSyncer{}, testLogger())

	_, err := svc.Update(context.Background(), "missing", &models.ServiceRecord{CallOpeningDate: "2025-01-01"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecordService_Delete(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewRecordService(c, syn, testLogger())
	ctx := context.Background()

	require.NoError(t, c.Records.Save(ctx, &models.ServiceRecord{ID: "r1", CallOpeningDate: "2025-01-01"}))
	require.NoError(t, c.Attachments.Save(ctx, &models.Attachment{ID: "a1", ServiceRecordID: "r1"}))
	require.NoError(t, c.Attachments.Save(ctx, &models.Attachment{ID: "a2", ServiceRecordID: "r1"}))

	require.NoError(t, svc.Delete(ctx, "r1"))

	rec, err := c.Records.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Attachment metadata stays; the remote store cascades the delete.
	atts, err := c.Attachments.GetAllByRecordID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, atts, 2)

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.OpDelete, items[0].Op)

	var payload models.DeletePayload
	require.NoError(t, json.Unmarshal(items[0].Payload, &payload))
	assert.Equal(t, "r1", payload.ID)
}
