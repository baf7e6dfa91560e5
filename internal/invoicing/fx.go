package invoicing

import (
	"github.com/smallbiznis/faktura/internal/invoicing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicing.service",
	fx.Provide(service.New),
)
