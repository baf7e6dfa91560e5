package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Address is embedded wherever a postal address is stored.
type Address struct {
	Street      string `gorm:"column:street" json:"street"`
	HouseNumber string `gorm:"column:house_number" json:"house_number"`
	PostalCode  string `gorm:"column:postal_code" json:"postal_code"`
	City        string `gorm:"column:city" json:"city"`
	Country     string `gorm:"column:country" json:"country"`
}

// BankDetails carry the payment coordinates printed on every invoice.
type BankDetails struct {
	BankName string `gorm:"column:bank_name" json:"bank_name"`
	IBAN     string `gorm:"column:iban" json:"iban"`
	BIC      string `gorm:"column:bic" json:"bic"`
}

// Company is the single biller record. The service keeps exactly one row and
// Update replaces its fields in place.
type Company struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	Name               string       `gorm:"not null" json:"name"`
	ManagingDirectors  string       `gorm:"column:managing_directors" json:"managing_directors"`
	Address            Address      `gorm:"embedded" json:"address"`
	Email              string       `gorm:"not null" json:"email"`
	Phone              string       `json:"phone"`
	VATID              string       `gorm:"column:vat_id" json:"vat_id"`
	CommercialRegister string       `gorm:"column:commercial_register" json:"commercial_register"`
	Bank               BankDetails  `gorm:"embedded" json:"bank"`
	LogoPath           string       `gorm:"column:logo_path" json:"logo_path,omitempty"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}
