package user

import (
	"github.com/smallbiznis/faktura/internal/user/domain"
	"github.com/smallbiznis/faktura/internal/user/service"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("user.service",
	fx.Provide(func(db *gorm.DB) repository.Repository[domain.User] {
		return repository.ProvideStore[domain.User](db)
	}),
	fx.Provide(service.New),
)
