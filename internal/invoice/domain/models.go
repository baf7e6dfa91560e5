package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
)

// Invoice is the persisted record of an issued invoice. Only calculation
// inputs are stored; net, tax, gross and the totals chain are recomputed from
// the lines on every read.
type Invoice struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	Number string       `gorm:"uniqueIndex;not null" json:"number"`

	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	// Billing address snapshot. The rendered document must not change when
	// the customer record is edited later.
	CustomerName    string `gorm:"not null" json:"customer_name"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`

	OperatorCode string                          `gorm:"not null" json:"operator_code"`
	Status       invoicingdomain.PaymentStatus   `gorm:"type:text;not null;default:'OPEN';index" json:"status"`
	IssuedAt     time.Time                       `gorm:"not null" json:"issued_at"`
	DueDate      time.Time                       `gorm:"not null;index" json:"due_date"`
	Currency     string                          `gorm:"not null;default:'EUR'" json:"currency"`
	PaymentTerms string                          `gorm:"type:text" json:"payment_terms"`

	DiscountPercent     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	EarlyPaymentPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"early_payment_percent"`
	SurchargeQty        decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"surcharge_qty"`

	DocumentPath string     `json:"document_path,omitempty"`
	EmailedAt    *time.Time `json:"emailed_at,omitempty"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine stores the priced inputs of one position. The tax rate is the
// rate that applied at issue time; later rate-table edits must not change an
// issued invoice.
type InvoiceLine struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Position  int          `gorm:"not null" json:"position"`

	ServiceID   snowflake.ID `gorm:"not null" json:"service_id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`

	Quantity        decimal.Decimal           `gorm:"type:numeric(12,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal           `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TaxCode         catalogdomain.TaxCode     `gorm:"type:text;not null" json:"tax_code"`
	TaxRate         decimal.Decimal           `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	DiscountPercent decimal.Decimal           `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	Unit            catalogdomain.DisplayUnit `gorm:"type:text;not null" json:"unit"`
}

func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Items converts the stored lines back into engine line items, ordered by
// position.
func (inv Invoice) Items() []invoicingdomain.LineItem {
	items := make([]invoicingdomain.LineItem, 0, len(inv.Lines))
	for _, ln := range inv.Lines {
		items = append(items, invoicingdomain.LineItem{
			ServiceID:       ln.ServiceID,
			Name:            ln.Name,
			Description:     ln.Description,
			Quantity:        ln.Quantity,
			UnitPrice:       ln.UnitPrice,
			TaxCode:         ln.TaxCode,
			TaxRate:         ln.TaxRate,
			DiscountPercent: ln.DiscountPercent,
			Unit:            ln.Unit,
			Position:        ln.Position,
		})
	}
	return items
}
