package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/internal/models"
)

func TestMemoryStoreRequestLifecycle(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Requests()

	first := &models.MaintenanceRequest{CustomerName: "John Doe", Description: "Oil change", Status: models.StatusPending}
	second := &models.MaintenanceRequest{CustomerName: "Alice Smith", Description: "Coolant leak", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))
	require.Equal(t, 1, first.ID)
	require.Equal(t, 2, second.ID)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "John Doe", all[0].CustomerName)

	require.NoError(t, repo.Delete(context.Background(), first.ID))
	_, err = repo.FindByID(context.Background(), first.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStoreChecklistIsolation(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Requests()

	req := &models.MaintenanceRequest{
		CustomerName: "John Doe",
		Description:  "Oil change",
		Status:       models.StatusPending,
		Checklist:    models.Checklist{{Group: "Filters", Item: "Oil filter"}},
	}
	require.NoError(t, repo.Create(context.Background(), req))

	found, err := repo.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	found.Checklist[0].Completed = true

	again, err := repo.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.False(t, again.Checklist[0].Completed)
}

func TestMemoryStoreInvoiceSurvivesRequestDelete(t *testing.T) {
	store := NewMemoryStore()

	req := &models.MaintenanceRequest{CustomerName: "John Doe", Description: "Oil change", Status: models.StatusPending}
	require.NoError(t, store.Requests().Create(context.Background(), req))

	inv := &models.Invoice{RequestID: req.ID, InvoiceNumber: "INV-1-1", PaymentStatus: models.PaymentUnpaid}
	require.NoError(t, store.Invoices().Create(context.Background(), inv))

	require.NoError(t, store.Requests().Delete(context.Background(), req.ID))

	kept, err := store.Invoices().FindByRequestID(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, inv.ID, kept.ID)
}

func TestMemoryStoreUsers(t *testing.T) {
	store := NewMemoryStore()
	users := store.Users()

	_, err := users.FindByEmail(context.Background(), "staff@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)

	user := &models.User{Email: "staff@example.com", FullName: "Shop Staff", Active: true}
	require.NoError(t, users.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)

	found, err := users.FindByEmail(context.Background(), "staff@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)
}
