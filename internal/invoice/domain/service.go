package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

// RenderedServiceInput names one performed service by catalog id. A nil
// DiscountPercent falls back to the customer's standing discount.
type RenderedServiceInput struct {
	ServiceID       string           `json:"service_id"`
	Duration        time.Duration    `json:"duration"`
	Quantity        decimal.Decimal  `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

type CreateInvoiceRequest struct {
	CustomerID          string                 `json:"customer_id"`
	Rendered            []RenderedServiceInput `json:"rendered"`
	SurchargeQty        decimal.Decimal        `json:"surcharge_qty"`
	OperatorInitials    string                 `json:"operator_initials"`
	DiscountPercent     *decimal.Decimal       `json:"discount_percent"`
	EarlyPaymentPercent *decimal.Decimal       `json:"early_payment_percent"`
	SendEmail           bool                   `json:"send_email"`
}

// InvoiceWithTotals pairs the stored record with its recomputed totals chain.
type InvoiceWithTotals struct {
	Invoice
	Totals invoicingdomain.Totals `json:"totals"`
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	CustomerID string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceWithTotals `json:"invoices"`
}

type GetInvoiceRequest struct {
	ID string
}

type UpdateStatusRequest struct {
	ID     string                        `json:"-"`
	Status invoicingdomain.PaymentStatus `json:"status"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (InvoiceWithTotals, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceWithTotals, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	// MarkPaid performs the guarded Open -> Paid transition.
	MarkPaid(context.Context, GetInvoiceRequest) (Invoice, error)
	// UpdateStatus is the administrative assignment for every other
	// transition. The tag is validated, the transition is not.
	UpdateStatus(context.Context, UpdateStatusRequest) (Invoice, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidService     = errors.New("invalid_service")
	ErrNoRenderedServices = errors.New("no_rendered_services")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotFound           = errors.New("not_found")

	// ErrNumberExhausted is returned when every disambiguator retry collided
	// with a stored invoice number.
	ErrNumberExhausted = errors.New("invoice_number_exhausted")
)
