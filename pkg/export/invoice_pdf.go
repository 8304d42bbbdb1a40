package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/pkg/config"
)

// InvoicePDFExporter renders invoices into a printable PDF.
type InvoicePDFExporter struct {
	shop config.ShopConfig
}

// NewInvoicePDFExporter constructs an invoice PDF exporter.
func NewInvoicePDFExporter(shop config.ShopConfig) *InvoicePDFExporter {
	return &InvoicePDFExporter{shop: shop}
}

// Render creates the PDF for an invoice. The maintenance request is optional;
// when the request was deleted after invoicing the document falls back to the
// fields captured on the invoice itself.
func (e *InvoicePDFExporter) Render(inv *models.Invoice, req *models.MaintenanceRequest) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("pdf requires an invoice")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, e.shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if e.shop.Address != "" {
		pdf.CellFormat(0, 5, e.shop.Address, "", 1, "C", false, 0, "")
	}
	if e.shop.Phone != "" {
		pdf.CellFormat(0, 5, e.shop.Phone, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Invoice %s", inv.InvoiceNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", inv.CreatedAt.Format("Jan 2, 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Work Order: #%d", inv.RequestID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if req != nil {
		pdf.CellFormat(0, 5, req.CustomerName, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, req.ContactInfo, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Vehicle: %s", req.VehicleInfo), "", 1, "L", false, 0, "")
		if req.Mileage != nil {
			pdf.CellFormat(0, 5, fmt.Sprintf("Mileage: %d", *req.Mileage), "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(0, 5, fmt.Sprintf("Work order #%d (no longer on file)", inv.RequestID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	e.section(pdf, "Labor", inv.LaborDescription)
	e.row(pdf, fmt.Sprintf("Labor (%s h @ %s/h)", inv.LaborHours, inv.LaborRate), inv.LaborTotal)

	e.section(pdf, "Parts", inv.PartsDetails)
	e.row(pdf, "Parts", inv.PartsTotal)

	e.row(pdf, "Miscellaneous", inv.MiscTotal)
	pdf.Ln(2)

	e.row(pdf, "Subtotal", inv.Subtotal)
	e.row(pdf, "Tax", inv.Tax)
	pdf.SetFont("Arial", "B", 11)
	e.row(pdf, "Total", inv.Total)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 9)
	status := fmt.Sprintf("Payment: %s", inv.PaymentStatus)
	if inv.PaymentMethod != nil && *inv.PaymentMethod != "" {
		status = fmt.Sprintf("%s (%s)", status, *inv.PaymentMethod)
	}
	pdf.CellFormat(0, 5, status, "", 1, "L", false, 0, "")

	if inv.Notes != nil && *inv.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, *inv.Notes, "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *InvoicePDFExporter) section(pdf *gofpdf.Fpdf, title string, body *string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if body != nil && *body != "" {
		pdf.MultiCell(0, 5, *body, "", "L", false)
	}
}

func (e *InvoicePDFExporter) row(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.CellFormat(140, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("$%s", amount), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
}
