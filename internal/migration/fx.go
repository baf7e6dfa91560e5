package migration

import (
	appointmentdomain "github.com/smallbiznis/faktura/internal/appointment/domain"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/seed"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	userdomain "github.com/smallbiznis/faktura/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL deployments rely on gorm's schema sync
			// because the SQL migrations are written for Postgres.
			err := conn.AutoMigrate(
				&companydomain.Company{},
				&customerdomain.Customer{},
				&catalogdomain.ServiceDefinition{},
				&appointmentdomain.Appointment{},
				&userdomain.User{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLine{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsureDefaults(conn)
	}),
)
