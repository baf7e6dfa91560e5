package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/smallbiznis/faktura/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ServiceDefinition{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)),
		Store: repository.ProvideStore[domain.ServiceDefinition](db),
	})
}

func validCreate(name string) domain.CreateServiceRequest {
	return domain.CreateServiceRequest{
		Name:             name,
		FlatFee:          decimal.NewFromInt(100),
		FlatFeeThreshold: time.Hour,
		OverageRate15Min: decimal.NewFromInt(20),
		TaxCode:          domain.TaxCodeStandard,
		Unit:             domain.UnitService,
	}
}

func TestCreateService(t *testing.T) {
	svc := newTestService(t)

	def, err := svc.Create(context.Background(), validCreate("Systemwartung vor Ort"))
	require.NoError(t, err)

	assert.Equal(t, "systemwartung-vor-ort", def.Code)
	assert.False(t, def.HasSurcharge)

	t.Run("duplicate name collides on the derived code", func(t *testing.T) {
		_, err := svc.Create(context.Background(), validCreate("Systemwartung vor Ort"))
		assert.ErrorIs(t, err, domain.ErrDuplicateCode)
	})

	t.Run("surcharge rule is stored", func(t *testing.T) {
		req := validCreate("Datensicherung")
		req.Surcharge = &domain.SurchargeRule{
			Kind:         domain.SurchargeKindStorage,
			UnitSize:     decimal.NewFromInt(100),
			PricePerUnit: decimal.NewFromInt(5),
		}
		def, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, def.HasSurcharge)
		assert.Equal(t, "100", def.Surcharge.UnitSize.String())
	})
}

func TestCreateServiceValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*domain.CreateServiceRequest)
		wantErr error
	}{
		{"empty name", func(r *domain.CreateServiceRequest) { r.Name = " " }, domain.ErrInvalidName},
		{"negative flat fee", func(r *domain.CreateServiceRequest) { r.FlatFee = decimal.NewFromInt(-1) }, domain.ErrInvalidFlatFee},
		{"zero threshold", func(r *domain.CreateServiceRequest) { r.FlatFeeThreshold = 0 }, domain.ErrInvalidThreshold},
		{"negative overage rate", func(r *domain.CreateServiceRequest) { r.OverageRate15Min = decimal.NewFromInt(-1) }, domain.ErrInvalidOverageRate},
		{"unknown tax code", func(r *domain.CreateServiceRequest) { r.TaxCode = "luxury" }, domain.ErrInvalidTaxCode},
		{"unknown unit", func(r *domain.CreateServiceRequest) { r.Unit = "XX" }, domain.ErrInvalidUnit},
		{"bad surcharge unit size", func(r *domain.CreateServiceRequest) {
			r.Surcharge = &domain.SurchargeRule{Kind: domain.SurchargeKindStandard, PricePerUnit: decimal.NewFromInt(5)}
		}, domain.ErrInvalidSurcharge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate("Systemwartung")
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUpdateService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("Systemwartung"))
	require.NoError(t, err)

	req := domain.UpdateServiceRequest{
		ID:               created.ID.String(),
		Name:             "Systemwartung Premium",
		FlatFee:          decimal.NewFromInt(150),
		FlatFeeThreshold: 2 * time.Hour,
		OverageRate15Min: decimal.NewFromInt(25),
		TaxCode:          domain.TaxCodeReduced,
		Unit:             domain.UnitHour,
	}
	updated, err := svc.Update(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Systemwartung Premium", updated.Name)
	// The code is assigned at creation and stays stable across renames.
	assert.Equal(t, "systemwartung", updated.Code)
	assert.Equal(t, domain.TaxCodeReduced, updated.TaxCode)

	t.Run("unknown id", func(t *testing.T) {
		req := req
		req.ID = "999999"
		_, err := svc.Update(ctx, req)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListServices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate("Systemwartung"))
	require.NoError(t, err)

	onSite := validCreate("Beratung vor Ort")
	onSite.OnSite = true
	_, err = svc.Create(ctx, onSite)
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListServiceRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Services, 2)

	resp, err = svc.List(ctx, domain.ListServiceRequest{Name: "beratung"})
	require.NoError(t, err)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Beratung vor Ort", resp.Services[0].Name)

	resp, err = svc.List(ctx, domain.ListServiceRequest{Code: "systemwartung"})
	require.NoError(t, err)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Systemwartung", resp.Services[0].Name)
}

func TestGetByIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreate("Systemwartung"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreate("Beratung"))
	require.NoError(t, err)

	defs, err := svc.GetByIDs(ctx, []string{first.ID.String(), second.ID.String()})
	require.NoError(t, err)
	require.Len(t, defs, 2)

	_, err = svc.GetByIDs(ctx, []string{first.ID.String(), "999999"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("Systemwartung"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.GetByID(ctx, domain.GetServiceRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrNotFound)
}
