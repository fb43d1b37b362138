package building

import (
	"github.com/domulabs/domu/internal/building/service"
	"go.uber.org/fx"
)

var Module = fx.Module("building.service",
	fx.Provide(service.NewService),
)
