package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
)

// Service is the invoicing computation engine. It is pure and stateless:
// every method is a synchronous function of its inputs and safe to call
// concurrently for independent invoices.
type Service interface {
	// Price computes the net unit price for a rendered service: flat fee up
	// to the threshold (inclusive), then one overage rate per started
	// 15-minute block, plus the supplemental surcharge when the definition
	// carries a rule and surchargeQty is positive.
	Price(def catalogdomain.ServiceDefinition, duration time.Duration, surchargeQty decimal.Decimal) (decimal.Decimal, error)

	// BuildLineItems prices each rendered service and assembles the ordered
	// line item list, positions starting at 1.
	BuildLineItems(rendered []RenderedService, surchargeQty decimal.Decimal) ([]LineItem, error)

	// Aggregate computes the invoice-level sums in the mandated order, each
	// step rounded to 2 decimals independently.
	Aggregate(items []LineItem, discountPct, earlyPaymentPct decimal.Decimal) (Totals, error)

	// Number produces a sortable invoice number from the timestamp and the
	// operator code, disambiguated by the injected sequence source.
	Number(ts time.Time, operatorCode string) string
}

// DisambiguatorSource supplies the two-digit invoice number disambiguator.
// Production uses a random source; tests inject a fixed one.
type DisambiguatorSource interface {
	Next() int
}

var (
	// Invalid input: the caller handed the engine something malformed.
	ErrInvalidDuration  = errors.New("invalid_duration")
	ErrInvalidThreshold = errors.New("invalid_flat_fee_threshold")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidPercent   = errors.New("invalid_percent")
	ErrInvalidSurcharge = errors.New("invalid_surcharge_rule")
	ErrUnknownTaxCode   = errors.New("unknown_tax_code")
	ErrNoLineItems      = errors.New("no_line_items")

	// Precondition: a lifecycle transition from a state that forbids it.
	ErrNotOpen = errors.New("invoice_not_open")

	// Invariant violation: a computed amount broke the engine's own
	// contract. Unreachable on valid input; a defect, not a user error.
	ErrInvariantViolation = errors.New("invariant_violation")
)
