package cart

import (
	"github.com/coursehive/coursehive/internal/cart/repository"
	"github.com/coursehive/coursehive/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
