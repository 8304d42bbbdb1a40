package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/internal/repository"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
)

func newInvoiceFixture(t *testing.T) (*InvoiceService, *RequestService, *models.MaintenanceRequest) {
	t.Helper()
	store := repository.NewMemoryStore()
	requests := NewRequestService(store.Requests(), nil, 0, nil, NewValidator(), nil, 6)
	invoices := NewInvoiceService(store.Invoices(), store.Requests(), NewValidator(), nil)

	order, err := requests.Create(context.Background(), submission())
	require.NoError(t, err)
	return invoices, requests, order
}

func TestDeriveInvoiceTotals(t *testing.T) {
	inv := &models.Invoice{
		LaborHours: "2.5",
		LaborRate:  "80.00",
		PartsTotal: "45.50",
		MiscTotal:  "0",
		Tax:        "20.00",
	}
	DeriveInvoiceTotals(inv)
	assert.Equal(t, "200.00", inv.LaborTotal)
	assert.Equal(t, "245.50", inv.Subtotal)
	assert.Equal(t, "265.50", inv.Total)

	DeriveInvoiceTotals(inv)
	assert.Equal(t, "200.00", inv.LaborTotal)
	assert.Equal(t, "245.50", inv.Subtotal)
	assert.Equal(t, "265.50", inv.Total)
}

func TestDeriveInvoiceTotalsBlankInputs(t *testing.T) {
	inv := &models.Invoice{LaborHours: "", LaborRate: "not a number"}
	DeriveInvoiceTotals(inv)
	assert.Equal(t, "0.00", inv.LaborTotal)
	assert.Equal(t, "0.00", inv.Subtotal)
	assert.Equal(t, "0.00", inv.Total)
}

func TestInvoiceServiceCreate(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{
		RequestID:  order.ID,
		LaborHours: "2.5",
		LaborRate:  "80",
		PartsTotal: "45.50",
		Tax:        "20",
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, created.RequestID)
	assert.Equal(t, models.PaymentUnpaid, created.PaymentStatus)
	assert.Equal(t, "200.00", created.LaborTotal)
	assert.Equal(t, "265.50", created.Total)
	assert.True(t, strings.HasPrefix(created.InvoiceNumber, "INV-"))
	assert.True(t, strings.HasSuffix(created.InvoiceNumber, fmt.Sprintf("-%d", order.ID)))
}

func TestInvoiceServiceCreateSeedsNotesFromPayload(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)
	require.NotNil(t, created.Notes)
	assert.Equal(t, "Fluids: customer supplies oil", *created.Notes)
}

func TestInvoiceServiceCreateSeedsLaborFromWorkDone(t *testing.T) {
	invoices, requests, order := newInvoiceFixture(t)

	workDone := "Replaced water pump"
	partsUsed := "Water pump, coolant"
	_, err := requests.Update(context.Background(), order.ID, models.RequestUpdate{WorkDone: &workDone, PartsUsed: &partsUsed})
	require.NoError(t, err)

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)
	require.NotNil(t, created.LaborDescription)
	assert.Equal(t, workDone, *created.LaborDescription)
	require.NotNil(t, created.PartsDetails)
	assert.Equal(t, partsUsed, *created.PartsDetails)
}

func TestInvoiceServiceCreateConflict(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)

	_, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)

	_, err = invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInvoiceServiceCreateUnknownRequest(t *testing.T) {
	invoices, _, _ := newInvoiceFixture(t)

	_, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInvoiceServiceUpdateRederivesTotals(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{
		RequestID:  order.ID,
		LaborHours: "2.5",
		LaborRate:  "80",
	})
	require.NoError(t, err)
	assert.Equal(t, "200.00", created.Total)

	rate := "100"
	tax := "10"
	updated, err := invoices.Update(context.Background(), created.ID, models.InvoiceUpdate{LaborRate: &rate, Tax: &tax})
	require.NoError(t, err)
	assert.Equal(t, "250.00", updated.LaborTotal)
	assert.Equal(t, "250.00", updated.Subtotal)
	assert.Equal(t, "260.00", updated.Total)
	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, "2.5", updated.LaborHours)
}

func TestInvoiceServiceUpdateRejectsUnknownPaymentStatus(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)
	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)

	status := "void"
	_, err = invoices.Update(context.Background(), created.ID, models.InvoiceUpdate{PaymentStatus: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInvoiceServiceGetByRequestAbsent(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)

	inv, err := invoices.GetByRequest(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestInvoiceServiceSurvivesRequestDeletion(t *testing.T) {
	invoices, requests, order := newInvoiceFixture(t)

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)

	require.NoError(t, requests.Delete(context.Background(), order.ID))

	kept, err := invoices.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, kept.RequestID)

	all, err := invoices.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestInvoiceServiceNumberFormat(t *testing.T) {
	invoices, _, order := newInvoiceFixture(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	invoices.now = func() time.Time { return at }

	created, err := invoices.Create(context.Background(), CreateInvoiceRequest{RequestID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-%d", at.UnixMilli(), order.ID), created.InvoiceNumber)
}
