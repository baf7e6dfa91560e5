package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestCreateCustomer(t *testing.T) {
	svc, fake := newTestService(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:            "  Erika Mustermann  ",
		Email:           "erika@example.de",
		DiscountPercent: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Erika Mustermann", customer.Name)
	assert.Equal(t, fake.Now(), customer.CreatedAt)
	assert.False(t, customer.Business())

	t.Run("company name marks a business customer", func(t *testing.T) {
		business, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
			Name:        "Max Mustermann",
			CompanyName: "Mustermann GmbH",
			Email:       "buchhaltung@mustermann.de",
		})
		require.NoError(t, err)
		assert.True(t, business.Business())
	})
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Email: "erika@example.de"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Erika", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{
		Name:            "Erika",
		Email:           "erika@example.de",
		DiscountPercent: decimal.NewFromInt(101),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{
		Name:            "Erika",
		Email:           "erika@example.de",
		DiscountPercent: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)
}

func TestUpdateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Erika Mustermann",
		Email: "erika@example.de",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
		ID:                created.ID.String(),
		Name:              "Erika Musterfrau",
		Email:             "erika@example.de",
		DiscountPercent:   decimal.NewFromInt(10),
		NextAppointmentID: "12345",
	})
	require.NoError(t, err)

	assert.Equal(t, "Erika Musterfrau", updated.Name)
	assert.Equal(t, "10", updated.DiscountPercent.String())
	require.NotNil(t, updated.NextAppointmentID)
	assert.Equal(t, "12345", updated.NextAppointmentID.String())

	t.Run("clearing the appointment reference", func(t *testing.T) {
		updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
			ID:    created.ID.String(),
			Name:  "Erika Musterfrau",
			Email: "erika@example.de",
		})
		require.NoError(t, err)
		assert.Nil(t, updated.NextAppointmentID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, domain.UpdateCustomerRequest{
			ID:    "999999",
			Name:  "Erika",
			Email: "erika@example.de",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListCustomersSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, c := range []domain.CreateCustomerRequest{
		{Name: "Erika Mustermann", Email: "erika@example.de"},
		{Name: "Max Mustermann", Email: "max@example.de"},
		{Name: "Hans Schmidt", Email: "hans@firma.de"},
	} {
		_, err := svc.Create(ctx, c)
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Search: "mustermann"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)

	resp, err = svc.List(ctx, domain.ListCustomerRequest{Search: "firma"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Hans Schmidt", resp.Customers[0].Name)

	resp, err = svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 3)
}

func TestListCustomersPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:  "Kunde",
			Email: "kunde@example.de",
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.ListCustomerRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Customers, 2)
	require.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)

	second, err := svc.List(ctx, domain.ListCustomerRequest{
		PageSize:  2,
		PageToken: first.PageInfo.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, second.Customers, 1)
	assert.False(t, second.PageInfo.HasMore)
}

func TestDeleteCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Erika Mustermann",
		Email: "erika@example.de",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.GetCustomerRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
