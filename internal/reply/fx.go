package reply

import (
	"github.com/coursehive/coursehive/internal/reply/repository"
	"github.com/coursehive/coursehive/internal/reply/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reply.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
