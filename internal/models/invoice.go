package models

import "time"

// Invoice payment statuses.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// ValidPaymentStatus reports whether s is a member of the payment enum.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// Invoice is the 0..1 billing document derived from a work order. All money
// fields are 2-decimal strings; they never cross a boundary as binary floats.
type Invoice struct {
	ID               int       `db:"id" json:"id"`
	RequestID        int       `db:"request_id" json:"requestId"`
	InvoiceNumber    string    `db:"invoice_number" json:"invoiceNumber"`
	LaborDescription *string   `db:"labor_description" json:"laborDescription,omitempty"`
	LaborHours       string    `db:"labor_hours" json:"laborHours"`
	LaborRate        string    `db:"labor_rate" json:"laborRate"`
	LaborTotal       string    `db:"labor_total" json:"laborTotal"`
	PartsDetails     *string   `db:"parts_details" json:"partsDetails,omitempty"`
	PartsTotal       string    `db:"parts_total" json:"partsTotal"`
	MiscDescription  *string   `db:"misc_description" json:"miscDescription,omitempty"`
	MiscTotal        string    `db:"misc_total" json:"miscTotal"`
	Subtotal         string    `db:"subtotal" json:"subtotal"`
	Tax              string    `db:"tax" json:"tax"`
	Total            string    `db:"total" json:"total"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	PaymentStatus    string    `db:"payment_status" json:"paymentStatus"`
	PaymentMethod    *string   `db:"payment_method" json:"paymentMethod,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// InvoiceUpdate carries a partial update; derivation always runs on the merged
// result, never the delta alone.
type InvoiceUpdate struct {
	LaborDescription *string `json:"laborDescription,omitempty"`
	LaborHours       *string `json:"laborHours,omitempty"`
	LaborRate        *string `json:"laborRate,omitempty"`
	PartsDetails     *string `json:"partsDetails,omitempty"`
	PartsTotal       *string `json:"partsTotal,omitempty"`
	MiscDescription  *string `json:"miscDescription,omitempty"`
	MiscTotal        *string `json:"miscTotal,omitempty"`
	Tax              *string `json:"tax,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	PaymentStatus    *string `json:"paymentStatus,omitempty"`
	PaymentMethod    *string `json:"paymentMethod,omitempty"`
}
