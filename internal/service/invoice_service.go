package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/internal/payload"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
)

type invoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	List(ctx context.Context) ([]models.Invoice, error)
	FindByID(ctx context.Context, id int) (*models.Invoice, error)
	FindByRequestID(ctx context.Context, requestID int) (*models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) error
}

type requestReader interface {
	FindByID(ctx context.Context, id int) (*models.MaintenanceRequest, error)
}

// CreateInvoiceRequest holds the invoicing payload. Seed fields left blank
// are pre-filled from the associated work order.
type CreateInvoiceRequest struct {
	RequestID        int    `json:"requestId" validate:"required,min=1"`
	LaborDescription string `json:"laborDescription"`
	LaborHours       string `json:"laborHours"`
	LaborRate        string `json:"laborRate"`
	PartsDetails     string `json:"partsDetails"`
	PartsTotal       string `json:"partsTotal"`
	MiscDescription  string `json:"miscDescription"`
	MiscTotal        string `json:"miscTotal"`
	Tax              string `json:"tax"`
	Notes            string `json:"notes"`
	PaymentStatus    string `json:"paymentStatus"`
	PaymentMethod    string `json:"paymentMethod"`
}

// InvoiceService handles invoice use-cases and owns the derivation rules.
type InvoiceService struct {
	repo      invoiceRepository
	requests  requestReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInvoiceService constructs the invoice service.
func NewInvoiceService(repo invoiceRepository, requests requestReader, validate *validator.Validate, logger *zap.Logger) *InvoiceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{repo: repo, requests: requests, validator: validate, logger: logger, now: time.Now}
}

// Create generates the invoice for a work order. At most one invoice may
// exist per request; a second creation attempt is a conflict.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.PaymentStatus != "" && !models.ValidPaymentStatus(req.PaymentStatus) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid payment status %q", req.PaymentStatus))
	}

	order, err := s.requests.FindByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, storageError(err, "failed to load request")
	}

	if _, err := s.repo.FindByRequestID(ctx, req.RequestID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an invoice already exists for this request")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageError(err, "failed to check existing invoice")
	}

	inv := &models.Invoice{
		RequestID:     req.RequestID,
		InvoiceNumber: s.generateInvoiceNumber(req.RequestID),
		LaborHours:    strings.TrimSpace(req.LaborHours),
		LaborRate:     strings.TrimSpace(req.LaborRate),
		PartsTotal:    strings.TrimSpace(req.PartsTotal),
		MiscTotal:     strings.TrimSpace(req.MiscTotal),
		Tax:           strings.TrimSpace(req.Tax),
		PaymentStatus: req.PaymentStatus,
	}
	if inv.MiscTotal == "" {
		inv.MiscTotal = "0"
	}
	if inv.Tax == "" {
		inv.Tax = "0"
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = models.PaymentUnpaid
	}
	inv.LaborDescription = optionalString(req.LaborDescription)
	inv.PartsDetails = optionalString(req.PartsDetails)
	inv.MiscDescription = optionalString(req.MiscDescription)
	inv.PaymentMethod = optionalString(req.PaymentMethod)
	inv.Notes = optionalString(req.Notes)

	// Seed blanks from the work order: labor narrative, parts list and the
	// note block extracted from the embedded service document.
	if inv.LaborDescription == nil && order.WorkDone != nil {
		inv.LaborDescription = optionalString(*order.WorkDone)
	}
	if inv.PartsDetails == nil && order.PartsUsed != nil {
		inv.PartsDetails = optionalString(*order.PartsUsed)
	}
	if inv.Notes == nil {
		doc, _ := payload.Decode(order.Description)
		inv.Notes = optionalString(payload.InvoiceNotes(doc))
	}

	DeriveInvoiceTotals(inv)

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, storageError(err, "failed to create invoice")
	}
	s.logger.Info("invoice created", zap.Int("id", inv.ID), zap.Int("request_id", inv.RequestID), zap.String("number", inv.InvoiceNumber))
	return inv, nil
}

// Update applies a partial update and re-derives every total from the merged
// field set. The invoice number is never regenerated.
func (s *InvoiceService) Update(ctx context.Context, id int, update models.InvoiceUpdate) (*models.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.PaymentStatus != nil && !models.ValidPaymentStatus(*update.PaymentStatus) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid payment status %q", *update.PaymentStatus))
	}

	if update.LaborDescription != nil {
		inv.LaborDescription = update.LaborDescription
	}
	if update.LaborHours != nil {
		inv.LaborHours = *update.LaborHours
	}
	if update.LaborRate != nil {
		inv.LaborRate = *update.LaborRate
	}
	if update.PartsDetails != nil {
		inv.PartsDetails = update.PartsDetails
	}
	if update.PartsTotal != nil {
		inv.PartsTotal = *update.PartsTotal
	}
	if update.MiscDescription != nil {
		inv.MiscDescription = update.MiscDescription
	}
	if update.MiscTotal != nil {
		inv.MiscTotal = *update.MiscTotal
	}
	if update.Tax != nil {
		inv.Tax = *update.Tax
	}
	if update.Notes != nil {
		inv.Notes = update.Notes
	}
	if update.PaymentStatus != nil {
		inv.PaymentStatus = *update.PaymentStatus
	}
	if update.PaymentMethod != nil {
		inv.PaymentMethod = update.PaymentMethod
	}

	DeriveInvoiceTotals(inv)

	if err := s.repo.Update(ctx, inv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, storageError(err, "failed to update invoice")
	}
	return inv, nil
}

// Get returns one invoice.
func (s *InvoiceService) Get(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, storageError(err, "failed to load invoice")
	}
	return inv, nil
}

// GetByRequest returns the invoice for a request, or nil when none exists
// yet. Absence is a normal outcome, not an error; callers use it to decide
// between offering create and edit.
func (s *InvoiceService) GetByRequest(ctx context.Context, requestID int) (*models.Invoice, error) {
	inv, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError(err, "failed to load invoice")
	}
	return inv, nil
}

// List returns every invoice in creation order, including any orphaned by
// deleted requests.
func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err, "failed to list invoices")
	}
	return invoices, nil
}

func (s *InvoiceService) generateInvoiceNumber(requestID int) string {
	return fmt.Sprintf("INV-%d-%d", s.now().UnixMilli(), requestID)
}

// DeriveInvoiceTotals recomputes the three derived money fields from the
// invoice's inputs:
//
//	laborTotal = round2(laborHours * laborRate)
//	subtotal   = round2(laborTotal + partsTotal + miscTotal)
//	total      = round2(subtotal + tax)
//
// Inputs that are blank or unparsable derive as zero. Totals are formatted
// with exactly two decimals; derivation is idempotent for identical inputs.
func DeriveInvoiceTotals(inv *models.Invoice) {
	hours := parseMoney(inv.LaborHours)
	rate := parseMoney(inv.LaborRate)
	laborTotal := hours.Mul(rate).Round(2)
	inv.LaborTotal = laborTotal.StringFixed(2)

	subtotal := laborTotal.Add(parseMoney(inv.PartsTotal)).Add(parseMoney(inv.MiscTotal)).Round(2)
	inv.Subtotal = subtotal.StringFixed(2)

	total := subtotal.Add(parseMoney(inv.Tax)).Round(2)
	inv.Total = total.StringFixed(2)
}

func parseMoney(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
