package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	userdomain "github.com/smallbiznis/faktura/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultCompanyName   = "Faktura GmbH"
	defaultCompanyEmail  = "rechnung@faktura.local"
	defaultAdminName     = "Faktura Admin"
	defaultAdminInitials = "FA"
	defaultAdminEmail    = "admin@faktura.local"
	defaultAdminPassword = "changeme1"
)

// EnsureDefaults seeds the biller company, a starter service catalog and a
// default admin operator so a fresh install can issue invoices immediately.
// Existing rows are never touched.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCompanyTx(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureCatalogTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node)
	})
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&companydomain.Company{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	company := companydomain.Company{
		ID:    node.Generate(),
		Name:  defaultCompanyName,
		Email: defaultCompanyEmail,
		Address: companydomain.Address{
			Country: "DE",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&company).Error
}

func ensureCatalogTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.ServiceDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	entries := []catalogdomain.ServiceDefinition{
		{
			Name:              "Beratung vor Ort",
			Description:       "Beratung und Betreuung beim Kunden",
			ReferenceDuration: time.Hour,
			FlatFee:           decimal.NewFromInt(120),
			FlatFeeThreshold:  time.Hour,
			OverageRate15Min:  decimal.NewFromInt(25),
			OnSite:            true,
			TaxCode:           catalogdomain.TaxCodeStandard,
			Unit:              catalogdomain.UnitService,
		},
		{
			Name:              "Fernwartung",
			Description:       "Wartung und Support per Fernzugriff",
			ReferenceDuration: 30 * time.Minute,
			FlatFee:           decimal.NewFromInt(45),
			FlatFeeThreshold:  30 * time.Minute,
			OverageRate15Min:  decimal.NewFromInt(15),
			TaxCode:           catalogdomain.TaxCodeStandard,
			Unit:              catalogdomain.UnitService,
		},
		{
			Name:              "Datensicherung",
			Description:       "Monatliche Datensicherung inklusive Speicher",
			ReferenceDuration: time.Hour,
			FlatFee:           decimal.NewFromInt(80),
			FlatFeeThreshold:  2 * time.Hour,
			OverageRate15Min:  decimal.NewFromInt(10),
			HasSurcharge:      true,
			Surcharge: catalogdomain.SurchargeRule{
				Kind:         catalogdomain.SurchargeKindStorage,
				UnitSize:     decimal.NewFromInt(100),
				PricePerUnit: decimal.NewFromInt(5),
			},
			TaxCode: catalogdomain.TaxCodeStandard,
			Unit:    catalogdomain.UnitMonth,
		},
	}

	for i := range entries {
		entries[i].ID = node.Generate()
		entries[i].Code = slug.Make(entries[i].Name)
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
	}
	return tx.WithContext(ctx).Create(&entries).Error
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&userdomain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := userdomain.User{
		ID:           node.Generate(),
		Name:         defaultAdminName,
		Initials:     defaultAdminInitials,
		Email:        defaultAdminEmail,
		Role:         userdomain.RoleAdmin,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&admin).Error
}
