package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

func ValidStatus(status Status) bool {
	switch status {
	case StatusPlanned, StatusConfirmed, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// Appointment is a scheduled visit. ServiceIDs reference catalog entries that
// are expected to be rendered; the invoice is built from what was actually
// rendered, not from this plan.
type Appointment struct {
	ID                snowflake.ID                 `gorm:"primaryKey" json:"id"`
	CustomerID        snowflake.ID                 `gorm:"not null;index" json:"customer_id"`
	OperatorID        snowflake.ID                 `gorm:"index" json:"operator_id"`
	Title             string                       `gorm:"not null" json:"title"`
	Notes             string                       `gorm:"type:text" json:"notes,omitempty"`
	StartAt           time.Time                    `gorm:"not null;index" json:"start_at"`
	EndAt             time.Time                    `gorm:"not null" json:"end_at"`
	EstimatedDuration time.Duration                `gorm:"not null;default:0" json:"estimated_duration"`
	ServiceIDs        datatypes.JSONSlice[string]  `gorm:"type:jsonb" json:"service_ids,omitempty"`
	Status            Status                       `gorm:"type:text;not null;default:'PLANNED'" json:"status"`
	ConfirmedAt       *time.Time                   `json:"confirmed_at,omitempty"`
	CreatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}
