package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleetworks/workorder-api/internal/models"
)

// RequestRepository manages persistence for maintenance requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, customer_name, contact_info, vehicle_info, vehicle_color, mileage,
        description, status, is_urgent, work_done, parts_used, checklist, created_at, updated_at`

// Create inserts a new request and fills in its assigned id.
func (r *RequestRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	const query = `INSERT INTO maintenance_requests
        (customer_name, contact_info, vehicle_info, vehicle_color, mileage, description, status, is_urgent, work_done, parts_used, checklist, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id`
	if err := r.db.GetContext(ctx, &req.ID, query,
		req.CustomerName, req.ContactInfo, req.VehicleInfo, req.VehicleColor, req.Mileage,
		req.Description, req.Status, req.IsUrgent, req.WorkDone, req.PartsUsed, req.Checklist,
		req.CreatedAt, req.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// List returns every request ordered by creation time ascending. The whole
// collection is returned; the domain size makes pagination a non-goal.
func (r *RequestRepository) List(ctx context.Context) ([]models.MaintenanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests ORDER BY created_at ASC, id ASC`, requestColumns)
	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// FindByID fetches a single request.
func (r *RequestRepository) FindByID(ctx context.Context, id int) (*models.MaintenanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE id = $1`, requestColumns)
	var req models.MaintenanceRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// Update writes the full merged record back. The service owns partial-update
// merging; by the time a record reaches here it is complete.
func (r *RequestRepository) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE maintenance_requests SET
        status = $2, description = $3, work_done = $4, parts_used = $5, checklist = $6, updated_at = $7
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, req.ID, req.Status, req.Description, req.WorkDone, req.PartsUsed, req.Checklist, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a request permanently. The associated invoice, if any, is
// intentionally left behind for audit.
func (r *RequestRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
