package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// fakeFileGateway implements only the download path the service uses.
type fakeFileGateway struct {
	fakeGatewayStub
	files map[string]*models.AttachmentFile
}

func (f *fakeFileGateway) GetAttachmentFile(ctx context.Context, id string) (*models.AttachmentFile, error) {
	return f.files[id], nil
}

func TestAttachmentService_Upload(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewAttachmentService(c, &fakeFileGateway{}, syn, testLogger())
	ctx := context.Background()

	require.NoError(t, c.Records.Save(ctx, &models.ServiceRecord{ID: "r1", CallOpeningDate: "2025-01-01"}))

	content := []byte("%PDF-1.4 fake")
	att, err := svc.Upload(ctx, "r1", models.AttachmentFile{
		Buffer:   content,
		Mimetype: "application/pdf",
		Filename: "laudo.pdf",
	}, "maria")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), att.Size)
	assert.Nil(t, att.FileData, "returned metadata must not carry the bytes")

	// Cache holds metadata only; the queue payload carries the bytes.
	stored, err := c.Attachments.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.FileData)

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.TableAttachments, items[0].Table)

	var payload models.Attachment
	require.NoError(t, json.Unmarshal(items[0].Payload, &payload))
	assert.Equal(t, content, payload.FileData)

	assert.Equal(t, int32(1), syn.backgroundCalls.Load())
}

func TestAttachmentService_UploadUnknownRecord(t *testing.T) {
	c := openTestCache(t)
	svc := NewAttachmentService(c, &fakeFileGateway{}, &fakeSyncer{}, testLogger())

	_, err := svc.Upload(context.Background(), "missing", models.AttachmentFile{Filename: "x"}, "maria")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAttachmentService_Delete(t *testing.T) {
	c := openTestCache(t)
	syn := &fakeSyncer{}
	svc := NewAttachmentService(c, &fakeFileGateway{}, syn, testLogger())
	ctx := context.Background()

	require.NoError(t, c.Attachments.Save(ctx, &models.Attachment{ID: "a1", ServiceRecordID: "r1"}))

	require.NoError(t, svc.Delete(ctx, "a1"))

	att, err := c.Attachments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, att)

	items, err := c.Queue.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.OpDelete, items[0].Op)
	assert.Equal(t, models.TableAttachments, items[0].Table)
}

func TestAttachmentService_Download(t *testing.T) {
	c := openTestCache(t)
	gw := &fakeFileGateway{files: map[string]*models.AttachmentFile{
		"a1": {Buffer: []byte("bytes"), Mimetype: "image/png", Filename: "foto.png"},
	}}
	svc := NewAttachmentService(c, gw, &fakeSyncer{}, testLogger())

	file, err := svc.Download(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "foto.png", file.Filename)

	_, err = svc.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
