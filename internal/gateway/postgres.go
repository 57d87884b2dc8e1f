package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/common"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

// PostgresGateway talks to the central Postgres database that serves as
// the authoritative store for the whole organization.
type PostgresGateway struct {
	db *sql.DB
}

// NewPostgresGateway connects to the remote database and makes sure the
// authoritative tables exist. Connection failure is not fatal here: the
// application must stay usable offline, so callers get a gateway whose
// operations fail with network errors until connectivity resumes.
func NewPostgresGateway(ctx context.Context, dsn string) (*PostgresGateway, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote db: %w", err)
	}
	g := &PostgresGateway{db: db}

	if err := g.Ping(ctx); err == nil {
		if err := g.ensureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure remote schema: %w", err)
		}
	}
	return g, nil
}

// Ping reports reachability of the remote database.
func (g *PostgresGateway) Ping(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrGatewayUnavailable, err)
	}
	return nil
}

func (g *PostgresGateway) ensureSchema(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'technician',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS service_records (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL,
			equipment TEXT NOT NULL DEFAULT '',
			chassis_plate TEXT NOT NULL DEFAULT '',
			client TEXT NOT NULL DEFAULT '',
			manufacturing_date TEXT NOT NULL DEFAULT '',
			call_opening_date TEXT NOT NULL,
			technician TEXT NOT NULL DEFAULT '',
			assistance_type TEXT NOT NULL DEFAULT '',
			assistance_location TEXT NOT NULL DEFAULT '',
			contact_person TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			reported_issue TEXT NOT NULL DEFAULT '',
			supplier TEXT NOT NULL DEFAULT '',
			part TEXT NOT NULL DEFAULT '',
			observations TEXT NOT NULL DEFAULT '',
			service_date TEXT NOT NULL DEFAULT '',
			responsible_technician TEXT NOT NULL DEFAULT '',
			part_labor_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			travel_freight_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			part_return TEXT NOT NULL DEFAULT '',
			supplier_warranty BOOLEAN NOT NULL DEFAULT FALSE,
			technical_solution TEXT NOT NULL DEFAULT '',
			additional_costs TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS attachments (
			id TEXT PRIMARY KEY,
			service_record_id TEXT REFERENCES service_records(id) ON DELETE CASCADE,
			filename TEXT NOT NULL DEFAULT '',
			mimetype TEXT NOT NULL DEFAULT '',
			size BIGINT NOT NULL DEFAULT 0,
			file_data BYTEA,
			uploaded_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_service_records_client ON service_records(client);
		CREATE INDEX IF NOT EXISTS idx_service_records_technician ON service_records(technician);
		CREATE INDEX IF NOT EXISTS idx_attachments_service_record_id ON attachments(service_record_id);
	`)
	return err
}

const remoteRecordColumns = `id, order_number, equipment, chassis_plate, client, manufacturing_date,
	call_opening_date, technician, assistance_type, assistance_location, contact_person,
	phone, reported_issue, supplier, part, observations, service_date,
	responsible_technician, part_labor_cost, travel_freight_cost, part_return,
	supplier_warranty, technical_solution, additional_costs, created_by, created_at, updated_at`

// GetAllServiceRecords fetches the full authoritative record set.
func (g *PostgresGateway) GetAllServiceRecords(ctx context.Context) ([]models.ServiceRecord, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT `+remoteRecordColumns+` FROM service_records`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service records: %w", err)
	}
	defer rows.Close()

	var result []models.ServiceRecord
	for rows.Next() {
		var (
			rec   models.ServiceRecord
			atype string
			costs string
		)
		if err := rows.Scan(
			&rec.ID, &rec.OrderNumber, &rec.Equipment, &rec.ChassisPlate, &rec.Client, &rec.ManufacturingDate,
			&rec.CallOpeningDate, &rec.Technician, &atype, &rec.AssistanceLocation, &rec.ContactPerson,
			&rec.Phone, &rec.ReportedIssue, &rec.Supplier, &rec.Part, &rec.Observations, &rec.ServiceDate,
			&rec.ResponsibleTechnician, &rec.PartLaborCost, &rec.TravelFreightCost, &rec.PartReturn,
			&rec.SupplierWarranty, &rec.TechnicalSolution, &costs, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rec.AssistanceType = models.AssistanceType(atype)
		if err := json.Unmarshal([]byte(costs), &rec.AdditionalCosts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional costs: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddServiceRecord inserts one record. The payload must carry every
// column; the services layer normalizes before enqueueing.
func (g *PostgresGateway) AddServiceRecord(ctx context.Context, rec *models.ServiceRecord) (*models.ServiceRecord, error) {
	costs, err := json.Marshal(rec.AdditionalCosts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal additional costs: %w", err)
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO service_records (`+remoteRecordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		rec.ID, rec.OrderNumber, rec.Equipment, rec.ChassisPlate, rec.Client, rec.ManufacturingDate,
		rec.CallOpeningDate, rec.Technician, string(rec.AssistanceType), rec.AssistanceLocation, rec.ContactPerson,
		rec.Phone, rec.ReportedIssue, rec.Supplier, rec.Part, rec.Observations, rec.ServiceDate,
		rec.ResponsibleTechnician, rec.PartLaborCost, rec.TravelFreightCost, rec.PartReturn,
		rec.SupplierWarranty, rec.TechnicalSolution, string(costs), rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add service record: %w", err)
	}
	return rec, nil
}

// UpdateServiceRecord replaces every mutable column of one record.
func (g *PostgresGateway) UpdateServiceRecord(ctx context.Context, id string, rec *models.ServiceRecord) error {
	costs, err := json.Marshal(rec.AdditionalCosts)
	if err != nil {
		return fmt.Errorf("failed to marshal additional costs: %w", err)
	}
	res, err := g.db.ExecContext(ctx, `
		UPDATE service_records SET
			order_number = $2, equipment = $3, chassis_plate = $4, client = $5,
			manufacturing_date = $6, call_opening_date = $7, technician = $8,
			assistance_type = $9, assistance_location = $10, contact_person = $11,
			phone = $12, reported_issue = $13, supplier = $14, part = $15,
			observations = $16, service_date = $17, responsible_technician = $18,
			part_labor_cost = $19, travel_freight_cost = $20, part_return = $21,
			supplier_warranty = $22, technical_solution = $23, additional_costs = $24,
			updated_at = $25
		WHERE id = $1`,
		id, rec.OrderNumber, rec.Equipment, rec.ChassisPlate, rec.Client,
		rec.ManufacturingDate, rec.CallOpeningDate, rec.Technician,
		string(rec.AssistanceType), rec.AssistanceLocation, rec.ContactPerson,
		rec.Phone, rec.ReportedIssue, rec.Supplier, rec.Part,
		rec.Observations, rec.ServiceDate, rec.ResponsibleTechnician,
		rec.PartLaborCost, rec.TravelFreightCost, rec.PartReturn,
		rec.SupplierWarranty, rec.TechnicalSolution, string(costs),
		rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update service record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteServiceRecord removes one record; attachments cascade remotely.
func (g *PostgresGateway) DeleteServiceRecord(ctx context.Context, id string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM service_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete service record: %w", err)
	}
	return nil
}

// GetAllUsers fetches every authentication principal.
func (g *PostgresGateway) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT id, username, password, name, role, created_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var (
			u    models.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddUser inserts one user.
func (g *PostgresGateway) AddUser(ctx context.Context, u *models.User) (*models.User, error) {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}
	return u, nil
}

// GetAttachments lists attachment metadata for one record. File bytes
// stay on the server; fetch them with GetAttachmentFile.
func (g *PostgresGateway) GetAttachments(ctx context.Context, recordID string) ([]models.Attachment, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, service_record_id, filename, mimetype, size, uploaded_by, created_at
		FROM attachments WHERE service_record_id = $1`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachments: %w", err)
	}
	defer rows.Close()

	var result []models.Attachment
	for rows.Next() {
		var att models.Attachment
		if err := rows.Scan(&att.ID, &att.ServiceRecordID, &att.Filename, &att.Mimetype,
			&att.Size, &att.UploadedBy, &att.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddAttachment uploads metadata plus file bytes in one insert.
func (g *PostgresGateway) AddAttachment(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO attachments (id, service_record_id, filename, mimetype, size, file_data, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		att.ID, att.ServiceRecordID, att.Filename, att.Mimetype, att.Size, att.FileData,
		att.UploadedBy, att.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add attachment: %w", err)
	}
	return att, nil
}

// DeleteAttachment removes one attachment.
func (g *PostgresGateway) DeleteAttachment(ctx context.Context, id string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// GetAttachmentFile downloads the stored bytes of one attachment.
// Returns (nil, nil) when the attachment does not exist.
func (g *PostgresGateway) GetAttachmentFile(ctx context.Context, id string) (*models.AttachmentFile, error) {
	var f models.AttachmentFile
	err := g.db.QueryRowContext(ctx, `
		SELECT file_data, mimetype, filename FROM attachments WHERE id = $1`, id).
		Scan(&f.Buffer, &f.Mimetype, &f.Filename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment file: %w", err)
	}
	return &f, nil
}

// Close releases the remote connection pool.
func (g *PostgresGateway) Close() error {
	return g.db.Close()
}
