package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/user/domain"
	"github.com/smallbiznis/faktura/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)),
		Store: repository.ProvideStore[domain.User](db),
	})
}

func TestCreateUser(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Create(context.Background(), domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "ab",
		Email:    "Anna.Becker@Example.DE",
		Password: "geheimnis",
	})
	require.NoError(t, err)

	assert.Equal(t, "AB", user.Initials)
	assert.Equal(t, "anna.becker@example.de", user.Email)
	assert.Equal(t, domain.RoleOperator, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("geheimnis")))
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	valid := domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "AB",
		Email:    "anna@example.de",
		Password: "geheimnis",
	}

	cases := []struct {
		name    string
		mutate  func(*domain.CreateUserRequest)
		wantErr error
	}{
		{"empty name", func(r *domain.CreateUserRequest) { r.Name = "" }, domain.ErrInvalidName},
		{"empty initials", func(r *domain.CreateUserRequest) { r.Initials = "" }, domain.ErrInvalidInitials},
		{"too many initials", func(r *domain.CreateUserRequest) { r.Initials = "ABCD" }, domain.ErrInvalidInitials},
		{"non letter initials", func(r *domain.CreateUserRequest) { r.Initials = "A1" }, domain.ErrInvalidInitials},
		{"bad email", func(r *domain.CreateUserRequest) { r.Email = "anna" }, domain.ErrInvalidEmail},
		{"bad role", func(r *domain.CreateUserRequest) { r.Role = "ROOT" }, domain.ErrInvalidRole},
		{"short password", func(r *domain.CreateUserRequest) { r.Password = "kurz" }, domain.ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateUserDuplicateInitials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "AB",
		Email:    "anna@example.de",
		Password: "geheimnis",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateUserRequest{
		Name:     "Albert Braun",
		Initials: "AB",
		Email:    "albert@example.de",
		Password: "geheimnis",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "AB",
		Email:    "anna@example.de",
		Password: "geheimnis",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateUserRequest{
		ID:       created.ID.String(),
		Initials: "abc",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, "ABC", updated.Initials)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	// Untouched fields stay as they were.
	assert.Equal(t, "Anna Becker", updated.Name)
	assert.Equal(t, "anna@example.de", updated.Email)
}

func TestGetByInitials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "AB",
		Email:    "anna@example.de",
		Password: "geheimnis",
	})
	require.NoError(t, err)

	found, err := svc.GetByInitials(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByInitials(ctx, "ZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateUserRequest{
		Name:     "Anna Becker",
		Initials: "AB",
		Email:    "anna@example.de",
		Password: "geheimnis",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.GetUserRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetUserRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
