package company

import (
	"github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/company/service"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("company.service",
	fx.Provide(func(db *gorm.DB) repository.Repository[domain.Company] {
		return repository.ProvideStore[domain.Company](db)
	}),
	fx.Provide(service.New),
)
