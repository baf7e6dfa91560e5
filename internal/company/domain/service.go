package domain

import (
	"context"
	"errors"
)

type UpdateCompanyRequest struct {
	Name               string      `json:"name"`
	ManagingDirectors  string      `json:"managing_directors"`
	Address            Address     `json:"address"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone"`
	VATID              string      `json:"vat_id"`
	CommercialRegister string      `json:"commercial_register"`
	Bank               BankDetails `json:"bank"`
	LogoPath           string      `json:"logo_path"`
}

type Service interface {
	Get(context.Context) (Company, error)
	Update(context.Context, UpdateCompanyRequest) (Company, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidIBAN  = errors.New("invalid_iban")
	ErrNotFound     = errors.New("not_found")
)
