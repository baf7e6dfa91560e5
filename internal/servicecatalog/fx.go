package servicecatalog

import (
	"github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/smallbiznis/faktura/internal/servicecatalog/service"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("servicecatalog.service",
	fx.Provide(func(db *gorm.DB) repository.Repository[domain.ServiceDefinition] {
		return repository.ProvideStore[domain.ServiceDefinition](db)
	}),
	fx.Provide(service.New),
)
