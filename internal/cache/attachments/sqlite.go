package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/dbx"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts attachment metadata by id.
func (r *SQLiteRepository) Save(ctx context.Context, att *models.Attachment) error {
	query := `INSERT INTO attachments (id, service_record_id, filename, mimetype, size, url, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			service_record_id = excluded.service_record_id,
			filename = excluded.filename,
			mimetype = excluded.mimetype,
			size = excluded.size,
			url = excluded.url,
			uploaded_by = excluded.uploaded_by,
			created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		att.ID, att.ServiceRecordID, att.Filename, att.Mimetype, att.Size, att.URL,
		att.UploadedBy, formatTime(att.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert attachment: %w", err)
	}
	return nil
}

// GetByID returns one attachment, or (nil, nil) when no row exists.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT id, service_record_id, filename, mimetype, size, url, uploaded_by, created_at
		FROM attachments WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	att, err := scanAttachment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return att, nil
}

// GetAllByRecordID lists attachments for a record via the secondary index.
func (r *SQLiteRepository) GetAllByRecordID(ctx context.Context, recordID string) ([]models.Attachment, error) {
	query := `SELECT id, service_record_id, filename, mimetype, size, url, uploaded_by, created_at
		FROM attachments WHERE service_record_id = ?`
	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []models.Attachment
	for rows.Next() {
		att, err := scanAttachment(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an attachment by id. It is idempotent.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func scanAttachment(scan func(dest ...any) error) (*models.Attachment, error) {
	var (
		att       models.Attachment
		createdAt string
	)
	err := scan(&att.ID, &att.ServiceRecordID, &att.Filename, &att.Mimetype, &att.Size,
		&att.URL, &att.UploadedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	att.CreatedAt = parseTime(createdAt)
	return &att, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
