package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/appointment/domain"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Appointment{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Store: repository.ProvideStore[domain.Appointment](db),
	})
	return svc, fake, node
}

func validCreate(customerID string, startAt time.Time) domain.CreateAppointmentRequest {
	return domain.CreateAppointmentRequest{
		CustomerID:        customerID,
		Title:             "Systemwartung bei Kunde",
		StartAt:           startAt,
		EndAt:             startAt.Add(2 * time.Hour),
		EstimatedDuration: 2 * time.Hour,
	}
}

func TestCreateAppointment(t *testing.T) {
	svc, fake, node := newTestService(t)
	customerID := node.Generate().String()

	appt, err := svc.Create(context.Background(), validCreate(customerID, fake.Now().AddDate(0, 0, 1)))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPlanned, appt.Status)
	assert.Nil(t, appt.ConfirmedAt)
	assert.Equal(t, customerID, appt.CustomerID.String())
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc, fake, node := newTestService(t)
	ctx := context.Background()
	startAt := fake.Now().AddDate(0, 0, 1)

	_, err := svc.Create(ctx, validCreate("not-a-number", startAt))
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	req := validCreate(node.Generate().String(), startAt)
	req.Title = "  "
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	req = validCreate(node.Generate().String(), startAt)
	req.EndAt = req.StartAt
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestConfirmAppointment(t *testing.T) {
	svc, fake, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(node.Generate().String(), fake.Now().AddDate(0, 0, 1)))
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, domain.GetAppointmentRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, fake.Now(), *confirmed.ConfirmedAt)

	t.Run("confirming twice is a no-op", func(t *testing.T) {
		again, err := svc.Confirm(ctx, domain.GetAppointmentRequest{ID: created.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, confirmed.ConfirmedAt, again.ConfirmedAt)
	})

	t.Run("only planned appointments can be confirmed", func(t *testing.T) {
		done, err := svc.Create(ctx, validCreate(node.Generate().String(), fake.Now().AddDate(0, 0, 2)))
		require.NoError(t, err)

		_, err = svc.Update(ctx, domain.UpdateAppointmentRequest{
			ID:      done.ID.String(),
			Title:   done.Title,
			StartAt: done.StartAt,
			EndAt:   done.EndAt,
			Status:  domain.StatusCancelled,
		})
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, domain.GetAppointmentRequest{ID: done.ID.String()})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestListAppointmentsWindow(t *testing.T) {
	svc, fake, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate().String()

	// One appointment per day over three days.
	for day := 1; day <= 3; day++ {
		_, err := svc.Create(ctx, validCreate(customerID, fake.Now().AddDate(0, 0, day)))
		require.NoError(t, err)
	}

	from := fake.Now().AddDate(0, 0, 2).Add(-time.Hour)
	resp, err := svc.List(ctx, domain.ListAppointmentRequest{
		CustomerID: customerID,
		From:       &from,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)

	to := fake.Now().AddDate(0, 0, 1).Add(time.Hour)
	resp, err = svc.List(ctx, domain.ListAppointmentRequest{
		CustomerID: customerID,
		To:         &to,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	resp, err = svc.List(ctx, domain.ListAppointmentRequest{
		Status: string(domain.StatusPlanned),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 3)
}

func TestDeleteAppointment(t *testing.T) {
	svc, fake, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(node.Generate().String(), fake.Now().AddDate(0, 0, 1)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.GetAppointmentRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetAppointmentRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
