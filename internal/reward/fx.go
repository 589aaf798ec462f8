package reward

import (
	"github.com/coursehive/coursehive/internal/reward/repository"
	"github.com/coursehive/coursehive/internal/reward/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reward.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
