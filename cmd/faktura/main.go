package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/appointment"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/company"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/customer"
	"github.com/smallbiznis/faktura/internal/invoice"
	"github.com/smallbiznis/faktura/internal/invoicing"
	"github.com/smallbiznis/faktura/internal/logger"
	"github.com/smallbiznis/faktura/internal/migration"
	"github.com/smallbiznis/faktura/internal/providers"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/server"
	"github.com/smallbiznis/faktura/internal/servicecatalog"
	"github.com/smallbiznis/faktura/internal/user"
	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		invoicing.Module,
		company.Module,
		customer.Module,
		servicecatalog.Module,
		appointment.Module,
		user.Module,
		providers.Module,
		invoice.Module,
		scheduler.Module,

		// HTTP surface
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
