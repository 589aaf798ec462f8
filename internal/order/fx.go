package order

import (
	"github.com/coursehive/coursehive/internal/order/repository"
	"github.com/coursehive/coursehive/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
