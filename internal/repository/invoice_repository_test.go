package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/internal/models"
)

var invoiceRows = []string{
	"id", "request_id", "invoice_number", "labor_description", "labor_hours", "labor_rate",
	"labor_total", "parts_details", "parts_total", "misc_description", "misc_total",
	"subtotal", "tax", "total", "notes", "payment_status", "payment_method",
	"created_at", "updated_at",
}

func TestInvoiceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	inv := &models.Invoice{
		RequestID:     3,
		InvoiceNumber: "INV-1717243200000-3",
		LaborHours:    "2.5",
		LaborRate:     "80.00",
		LaborTotal:    "200.00",
		PartsTotal:    "45.50",
		MiscTotal:     "0",
		Subtotal:      "245.50",
		Tax:           "20.00",
		Total:         "265.50",
		PaymentStatus: models.PaymentUnpaid,
	}
	require.NoError(t, repo.Create(context.Background(), inv))
	require.Equal(t, 12, inv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryFindByRequestID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(invoiceRows).
		AddRow(12, 3, "INV-1717243200000-3", nil, "2.5", "80.00", "200.00", nil, "45.50",
			nil, "0", "245.50", "20.00", "265.50", nil, models.PaymentUnpaid, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_id, invoice_number")).
		WithArgs(3).
		WillReturnRows(rows)

	found, err := repo.FindByRequestID(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "INV-1717243200000-3", found.InvoiceNumber)
	require.Equal(t, "265.50", found.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryFindByRequestIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_id, invoice_number")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByRequestID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inv := &models.Invoice{ID: 12, PaymentStatus: models.PaymentPaid}
	require.NoError(t, repo.Update(context.Background(), inv))
	require.False(t, inv.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Invoice{ID: 99})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
