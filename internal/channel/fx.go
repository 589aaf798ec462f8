package channel

import (
	"github.com/coursehive/coursehive/internal/channel/repository"
	"github.com/coursehive/coursehive/internal/channel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("channel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
