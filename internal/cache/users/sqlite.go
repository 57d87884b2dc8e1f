package users

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

// Save upserts a user by id.
func (r *SQLiteRepository) Save(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, username, password, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			name = excluded.name,
			role = excluded.role,
			created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Name, string(u.Role), formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID returns a user by id, or (nil, nil) when no row exists.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, password, name, role, created_at FROM users WHERE id = ?`, id)
}

// GetByUsername returns a user by username, or (nil, nil) when no row exists.
func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, password, name, role, created_at FROM users WHERE username = ?`, username)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

// GetAll lists every cached user.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, password, name, role, created_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a user by id. It is idempotent.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var (
		u         models.User
		role      string
		createdAt string
	)
	if err := scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &role, &createdAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
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
