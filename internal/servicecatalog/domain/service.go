package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ListServiceRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Code      string
	TaxCode   string
	OnSite    *bool
}

type ListServiceFilter struct {
	Name    string
	Code    string
	TaxCode string
	OnSite  *bool
}

type ListServiceResponse struct {
	pagination.PageInfo
	Services []ServiceDefinition `json:"services"`
}

type CreateServiceRequest struct {
	Name              string
	Description       string
	ReferenceDuration time.Duration
	FlatFee           decimal.Decimal
	FlatFeeThreshold  time.Duration
	OverageRate15Min  decimal.Decimal
	OnSite            bool
	Surcharge         *SurchargeRule
	TaxCode           TaxCode
	Unit              DisplayUnit
}

type UpdateServiceRequest struct {
	ID                string
	Name              string
	Description       string
	ReferenceDuration time.Duration
	FlatFee           decimal.Decimal
	FlatFeeThreshold  time.Duration
	OverageRate15Min  decimal.Decimal
	OnSite            bool
	Surcharge         *SurchargeRule
	TaxCode           TaxCode
	Unit              DisplayUnit
}

type GetServiceRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateServiceRequest) (ServiceDefinition, error)
	Update(context.Context, UpdateServiceRequest) (ServiceDefinition, error)
	List(context.Context, ListServiceRequest) (ListServiceResponse, error)
	GetByID(context.Context, GetServiceRequest) (ServiceDefinition, error)
	GetByIDs(context.Context, []string) ([]ServiceDefinition, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidFlatFee       = errors.New("invalid_flat_fee")
	ErrInvalidThreshold     = errors.New("invalid_flat_fee_threshold")
	ErrInvalidOverageRate   = errors.New("invalid_overage_rate")
	ErrInvalidSurcharge     = errors.New("invalid_surcharge_rule")
	ErrInvalidTaxCode       = errors.New("invalid_tax_code")
	ErrInvalidUnit          = errors.New("invalid_unit")
	ErrDuplicateCode        = errors.New("duplicate_code")
	ErrNotFound             = errors.New("not_found")
)
