package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ListAppointmentRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
}

type ListAppointmentResponse struct {
	pagination.PageInfo
	Appointments []Appointment `json:"appointments"`
}

type CreateAppointmentRequest struct {
	CustomerID        string        `json:"customer_id"`
	OperatorID        string        `json:"operator_id"`
	Title             string        `json:"title"`
	Notes             string        `json:"notes"`
	StartAt           time.Time     `json:"start_at"`
	EndAt             time.Time     `json:"end_at"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	ServiceIDs        []string      `json:"service_ids"`
}

type UpdateAppointmentRequest struct {
	ID                string        `json:"-"`
	Title             string        `json:"title"`
	Notes             string        `json:"notes"`
	StartAt           time.Time     `json:"start_at"`
	EndAt             time.Time     `json:"end_at"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	ServiceIDs        []string      `json:"service_ids"`
	Status            Status        `json:"status"`
}

type GetAppointmentRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateAppointmentRequest) (Appointment, error)
	Update(context.Context, UpdateAppointmentRequest) (Appointment, error)
	Confirm(context.Context, GetAppointmentRequest) (Appointment, error)
	List(context.Context, ListAppointmentRequest) (ListAppointmentResponse, error)
	GetByID(context.Context, GetAppointmentRequest) (Appointment, error)
	Delete(context.Context, GetAppointmentRequest) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidWindow   = errors.New("invalid_window")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
)
