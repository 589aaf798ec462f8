package subscription

import (
	"github.com/coursehive/coursehive/internal/subscription/repository"
	"github.com/coursehive/coursehive/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
