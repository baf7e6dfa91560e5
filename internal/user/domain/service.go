package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ListUserRequest struct {
	PageToken string
	PageSize  int32
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

type GetUserRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	Update(context.Context, UpdateUserRequest) (User, error)
	List(context.Context, ListUserRequest) (ListUserResponse, error)
	GetByID(context.Context, GetUserRequest) (User, error)
	GetByInitials(context.Context, string) (User, error)
	Delete(context.Context, GetUserRequest) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidInitials = errors.New("invalid_initials")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrDuplicate       = errors.New("duplicate_user")
	ErrNotFound        = errors.New("not_found")
)
