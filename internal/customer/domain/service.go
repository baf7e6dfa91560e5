package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken string
	PageSize  int32

	// Search matches name and email as a case-insensitive substring.
	Search string
}

type ListCustomerFilter struct {
	Search string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name            string          `json:"name"`
	CompanyName     string          `json:"company_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Address         Address         `json:"address"`
	BirthDate       *time.Time      `json:"birth_date"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type UpdateCustomerRequest struct {
	ID                string          `json:"-"`
	Name              string          `json:"name"`
	CompanyName       string          `json:"company_name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           Address         `json:"address"`
	BirthDate         *time.Time      `json:"birth_date"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	NextAppointmentID string          `json:"next_appointment_id"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	Delete(context.Context, GetCustomerRequest) error
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidDiscount = errors.New("invalid_discount")
	ErrNotFound        = errors.New("not_found")
)
