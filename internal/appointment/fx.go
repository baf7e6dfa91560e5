package appointment

import (
	"github.com/smallbiznis/faktura/internal/appointment/domain"
	"github.com/smallbiznis/faktura/internal/appointment/service"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("appointment.service",
	fx.Provide(func(db *gorm.DB) repository.Repository[domain.Appointment] {
		return repository.ProvideStore[domain.Appointment](db)
	}),
	fx.Provide(service.New),
)
