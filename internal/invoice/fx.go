package invoice

import (
	"github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/service"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("invoice.service",
	fx.Provide(func(db *gorm.DB) repository.Repository[domain.Invoice] {
		return repository.ProvideStore[domain.Invoice](db)
	}),
	fx.Provide(service.New),
)
