// Package domain contains the invoicing computation types. Everything in
// here is a pure value: derived amounts are methods over the line inputs and
// are recomputed on every call, never cached or persisted on their own.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
)

var oneHundred = decimal.NewFromInt(100)

// RenderedService is one performed service handed to the assembler: the
// catalog definition it was performed under, the measured duration, an
// optional quantity for per-unit services (zero means one) and an optional
// line discount percent.
type RenderedService struct {
	Definition      catalogdomain.ServiceDefinition
	Duration        time.Duration
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal
}

// LineItem is a priced invoice line. Net, tax and gross are derived from
// quantity, unit price, discount and tax rate; tax and gross are each rounded
// from the net amount independently so rounding drift cannot accumulate
// through subtraction.
type LineItem struct {
	ServiceID       snowflake.ID            `json:"service_id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	Quantity        decimal.Decimal         `json:"quantity"`
	UnitPrice       decimal.Decimal         `json:"unit_price"`
	TaxCode         catalogdomain.TaxCode   `json:"tax_code"`
	TaxRate         decimal.Decimal         `json:"tax_rate"`
	DiscountPercent decimal.Decimal         `json:"discount_percent"`
	Unit            catalogdomain.DisplayUnit `json:"unit"`
	Position        int                     `json:"position"`
}

// Net returns quantity*unitPrice less the line discount, rounded to 2 decimals.
func (li LineItem) Net() decimal.Decimal {
	base := li.Quantity.Mul(li.UnitPrice)
	return base.Sub(base.Mul(li.DiscountPercent).Div(oneHundred)).Round(2)
}

// TaxAmount returns the tax on the net amount, rounded to 2 decimals.
// Always net*rate, never gross-net.
func (li LineItem) TaxAmount() decimal.Decimal {
	return li.Net().Mul(li.TaxRate).Div(oneHundred).Round(2)
}

// Gross returns net plus tax, rounded from net to 2 decimals.
func (li LineItem) Gross() decimal.Decimal {
	net := li.Net()
	return net.Add(net.Mul(li.TaxRate).Div(oneHundred)).Round(2)
}

// Totals are the invoice-level aggregate sums. The fields mirror the fixed
// calculation order: the discount is taken against the net sum but subtracted
// from the gross sum, and the early-payment discount is taken against the
// gross amount after the discount has already been subtracted.
type Totals struct {
	NetSum                     decimal.Decimal `json:"net_sum"`
	GrossSum                   decimal.Decimal `json:"gross_sum"`
	TaxSum                     decimal.Decimal `json:"tax_sum"`
	DiscountAmount             decimal.Decimal `json:"discount_amount"`
	GrossAfterDiscount         decimal.Decimal `json:"gross_after_discount"`
	EarlyPaymentDiscountAmount decimal.Decimal `json:"early_payment_discount_amount"`
	PayableAmount              decimal.Decimal `json:"payable_amount"`
}

// RateTable resolves a tax code tag to its percentage. Rates live in
// configuration so a changed or fractional rate never requires a code change.
type RateTable struct {
	rates map[catalogdomain.TaxCode]decimal.Decimal
}

// NewRateTable builds a rate table from percentage values keyed by tax code.
func NewRateTable(rates map[catalogdomain.TaxCode]decimal.Decimal) RateTable {
	copied := make(map[catalogdomain.TaxCode]decimal.Decimal, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}
	return RateTable{rates: copied}
}

// DefaultRateTable returns the German VAT classes: 19% standard, 7% reduced, 0% exempt.
func DefaultRateTable() RateTable {
	return NewRateTable(map[catalogdomain.TaxCode]decimal.Decimal{
		catalogdomain.TaxCodeStandard: decimal.NewFromInt(19),
		catalogdomain.TaxCodeReduced:  decimal.NewFromInt(7),
		catalogdomain.TaxCodeExempt:   decimal.Zero,
	})
}

// Rate returns the percentage for code.
func (t RateTable) Rate(code catalogdomain.TaxCode) (decimal.Decimal, error) {
	rate, ok := t.rates[code]
	if !ok {
		return decimal.Decimal{}, ErrUnknownTaxCode
	}
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return decimal.Decimal{}, ErrInvalidPercent
	}
	return rate, nil
}

// ValidPercent reports whether pct lies in the closed interval [0, 100].
func ValidPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && !pct.GreaterThan(oneHundred)
}
