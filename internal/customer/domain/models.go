package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Address struct {
	Street      string `gorm:"column:street" json:"street"`
	HouseNumber string `gorm:"column:house_number" json:"house_number"`
	PostalCode  string `gorm:"column:postal_code" json:"postal_code"`
	City        string `gorm:"column:city" json:"city"`
	Country     string `gorm:"column:country" json:"country"`
}

type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	CompanyName string       `gorm:"column:company_name" json:"company_name,omitempty"`
	Email       string       `gorm:"not null" json:"email"`
	Phone       string       `json:"phone,omitempty"`
	Address     Address      `gorm:"embedded" json:"address"`
	BirthDate   *time.Time   `gorm:"column:birth_date" json:"birth_date,omitempty"`

	// DiscountPercent prefills the line discount on invoices created for this
	// customer. Range [0,100].
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`

	// NextAppointmentID is a one-directional reference; appointments do not
	// point back.
	NextAppointmentID *snowflake.ID `gorm:"column:next_appointment_id" json:"next_appointment_id,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Business reports whether the customer bills as a company.
func (c Customer) Business() bool {
	return c.CompanyName != ""
}
