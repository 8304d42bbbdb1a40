package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/internal/service"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
	"github.com/fleetworks/workorder-api/pkg/export"
	"github.com/fleetworks/workorder-api/pkg/response"
)

// InvoiceHandler exposes invoice endpoints.
type InvoiceHandler struct {
	invoices *service.InvoiceService
	requests *service.RequestService
	exporter *export.InvoicePDFExporter
}

// NewInvoiceHandler constructs InvoiceHandler.
func NewInvoiceHandler(invoices *service.InvoiceService, requests *service.RequestService, exporter *export.InvoicePDFExporter) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, requests: requests, exporter: exporter}
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.invoices.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices)
}

// Get godoc
// @Summary Get invoice detail
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice)
}

// GetByRequest godoc
// @Summary Get the invoice attached to a maintenance request
// @Description Returns a null data field when the request has no invoice yet
// @Tags Invoices
// @Produce json
// @Param requestId path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices/request/{requestId} [get]
func (h *InvoiceHandler) GetByRequest(c *gin.Context) {
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}
	invoice, err := h.invoices.GetByRequest(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice)
}

// Create godoc
// @Summary Create an invoice for a maintenance request
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body service.CreateInvoiceRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	created, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update an invoice
// @Description Partial update; derived totals are recomputed from the merged fields
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param payload body models.InvoiceUpdate true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices/{id} [patch]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var update models.InvoiceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	updated, err := h.invoices.Update(c.Request.Context(), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// PDF godoc
// @Summary Download an invoice as PDF
// @Tags Invoices
// @Produce application/pdf
// @Param id path int true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The request may have been deleted after invoicing; the PDF still
	// renders from the invoice alone in that case.
	request, err := h.requests.Get(c.Request.Context(), invoice.RequestID)
	if err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrNotFound.Code {
			response.Error(c, err)
			return
		}
		request = nil
	}

	data, err := h.exporter.Render(invoice, request)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}
