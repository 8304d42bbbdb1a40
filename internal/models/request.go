package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Work-order statuses. Transitions are deliberately unguarded: staff may set
// any valid status regardless of the current one. Status is a label, not a
// workflow.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// InitialStatus is the canonical status assigned at creation.
const InitialStatus = StatusPending

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// MaintenanceRequest is a customer-submitted work order.
type MaintenanceRequest struct {
	ID           int        `db:"id" json:"id"`
	CustomerName string     `db:"customer_name" json:"customerName"`
	ContactInfo  string     `db:"contact_info" json:"contactInfo"`
	VehicleInfo  string     `db:"vehicle_info" json:"vehicleInfo"`
	VehicleColor *string    `db:"vehicle_color" json:"vehicleColor,omitempty"`
	Mileage      *int       `db:"mileage" json:"mileage,omitempty"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	IsUrgent     bool       `db:"is_urgent" json:"isUrgent"`
	WorkDone     *string    `db:"work_done" json:"workDone,omitempty"`
	PartsUsed    *string    `db:"parts_used" json:"partsUsed,omitempty"`
	Checklist    Checklist  `db:"checklist" json:"checklist,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// ChecklistItem is one independently-toggleable entry flattened out of the
// service payload's selected items.
type ChecklistItem struct {
	Group     string `json:"group"`
	Item      string `json:"item"`
	Completed bool   `json:"completed"`
	Comment   string `json:"comment"`
}

// Checklist is stored as a JSONB column.
type Checklist []ChecklistItem

// Value implements driver.Valuer.
func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *Checklist) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported checklist column type %T", src)
	}
	return json.Unmarshal(raw, c)
}

// RequestUpdate carries a partial update for a request. Nil fields are left
// untouched; a nil Checklist pointer means "do not change the checklist".
type RequestUpdate struct {
	Status      *string    `json:"status,omitempty"`
	WorkDone    *string    `json:"workDone,omitempty"`
	PartsUsed   *string    `json:"partsUsed,omitempty"`
	Description *string    `json:"description,omitempty"`
	Checklist   *Checklist `json:"checklist,omitempty"`
}
