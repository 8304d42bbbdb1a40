package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleetworks/workorder-api/internal/models"
)

// InvoiceRepository manages persistence for invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs an InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, request_id, invoice_number, labor_description, labor_hours, labor_rate,
        labor_total, parts_details, parts_total, misc_description, misc_total, subtotal, tax, total,
        notes, payment_status, payment_method, created_at, updated_at`

// Create inserts a new invoice and fills in its assigned id.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	const query = `INSERT INTO invoices
        (request_id, invoice_number, labor_description, labor_hours, labor_rate, labor_total,
         parts_details, parts_total, misc_description, misc_total, subtotal, tax, total,
         notes, payment_status, payment_method, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING id`
	if err := r.db.GetContext(ctx, &inv.ID, query,
		inv.RequestID, inv.InvoiceNumber, inv.LaborDescription, inv.LaborHours, inv.LaborRate,
		inv.LaborTotal, inv.PartsDetails, inv.PartsTotal, inv.MiscDescription, inv.MiscTotal,
		inv.Subtotal, inv.Tax, inv.Total, inv.Notes, inv.PaymentStatus, inv.PaymentMethod,
		inv.CreatedAt, inv.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// List returns every invoice ordered by creation time ascending.
func (r *InvoiceRepository) List(ctx context.Context) ([]models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices ORDER BY created_at ASC, id ASC`, invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// FindByID fetches a single invoice.
func (r *InvoiceRepository) FindByID(ctx context.Context, id int) (*models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns)
	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByRequestID returns the 0..1 invoice for a request; sql.ErrNoRows means
// none exists yet, which callers treat as a normal outcome.
func (r *InvoiceRepository) FindByRequestID(ctx context.Context, requestID int) (*models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE request_id = $1 ORDER BY id ASC LIMIT 1`, invoiceColumns)
	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, query, requestID); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update writes the full merged invoice back. The invoice number is never
// rewritten after creation.
func (r *InvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET
        labor_description = $2, labor_hours = $3, labor_rate = $4, labor_total = $5,
        parts_details = $6, parts_total = $7, misc_description = $8, misc_total = $9,
        subtotal = $10, tax = $11, total = $12, notes = $13, payment_status = $14,
        payment_method = $15, updated_at = $16
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.LaborDescription, inv.LaborHours, inv.LaborRate, inv.LaborTotal,
		inv.PartsDetails, inv.PartsTotal, inv.MiscDescription, inv.MiscTotal,
		inv.Subtotal, inv.Tax, inv.Total, inv.Notes, inv.PaymentStatus, inv.PaymentMethod,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
