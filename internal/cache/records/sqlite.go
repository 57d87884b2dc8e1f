package records

import (
	"context"
	"database/sql"
	"encoding/json"
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

const recordColumns = `id, order_number, equipment, chassis_plate, client, manufacturing_date,
	call_opening_date, technician, assistance_type, assistance_location, contact_person,
	phone, reported_issue, supplier, part, observations, service_date,
	responsible_technician, part_labor_cost, travel_freight_cost, part_return,
	supplier_warranty, technical_solution, additional_costs, created_by, created_at, updated_at`

// Save upserts a record by id. On conflict every column is replaced.
func (r *SQLiteRepository) Save(ctx context.Context, rec *models.ServiceRecord) error {
	costs, err := json.Marshal(rec.AdditionalCosts)
	if err != nil {
		return fmt.Errorf("failed to marshal additional costs: %w", err)
	}

	query := `INSERT INTO service_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_number = excluded.order_number,
			equipment = excluded.equipment,
			chassis_plate = excluded.chassis_plate,
			client = excluded.client,
			manufacturing_date = excluded.manufacturing_date,
			call_opening_date = excluded.call_opening_date,
			technician = excluded.technician,
			assistance_type = excluded.assistance_type,
			assistance_location = excluded.assistance_location,
			contact_person = excluded.contact_person,
			phone = excluded.phone,
			reported_issue = excluded.reported_issue,
			supplier = excluded.supplier,
			part = excluded.part,
			observations = excluded.observations,
			service_date = excluded.service_date,
			responsible_technician = excluded.responsible_technician,
			part_labor_cost = excluded.part_labor_cost,
			travel_freight_cost = excluded.travel_freight_cost,
			part_return = excluded.part_return,
			supplier_warranty = excluded.supplier_warranty,
			technical_solution = excluded.technical_solution,
			additional_costs = excluded.additional_costs,
			created_by = excluded.created_by,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.OrderNumber, rec.Equipment, rec.ChassisPlate, rec.Client, rec.ManufacturingDate,
		rec.CallOpeningDate, rec.Technician, string(rec.AssistanceType), rec.AssistanceLocation, rec.ContactPerson,
		rec.Phone, rec.ReportedIssue, rec.Supplier, rec.Part, rec.Observations, rec.ServiceDate,
		rec.ResponsibleTechnician, rec.PartLaborCost, rec.TravelFreightCost, rec.PartReturn,
		boolToInt(rec.SupplierWarranty), rec.TechnicalSolution, string(costs), rec.CreatedBy,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert service record: %w", err)
	}
	return nil
}

// GetByID returns a single record, or (nil, nil) when no row exists.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM service_records WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select service record: %w", err)
	}
	return rec, nil
}

// GetAll lists every cached service record.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ServiceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM service_records`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select service records: %w", err)
	}
	defer rows.Close()

	var result []models.ServiceRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a record by id. It is idempotent.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM service_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service record: %w", err)
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (*models.ServiceRecord, error) {
	var (
		rec       models.ServiceRecord
		atype     string
		warranty  int
		costs     string
		createdAt string
		updatedAt string
	)
	err := scan(
		&rec.ID, &rec.OrderNumber, &rec.Equipment, &rec.ChassisPlate, &rec.Client, &rec.ManufacturingDate,
		&rec.CallOpeningDate, &rec.Technician, &atype, &rec.AssistanceLocation, &rec.ContactPerson,
		&rec.Phone, &rec.ReportedIssue, &rec.Supplier, &rec.Part, &rec.Observations, &rec.ServiceDate,
		&rec.ResponsibleTechnician, &rec.PartLaborCost, &rec.TravelFreightCost, &rec.PartReturn,
		&warranty, &rec.TechnicalSolution, &costs, &rec.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.AssistanceType = models.AssistanceType(atype)
	rec.SupplierWarranty = warranty != 0
	if err := json.Unmarshal([]byte(costs), &rec.AdditionalCosts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal additional costs: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
