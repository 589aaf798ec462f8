package auth

import (
	"github.com/coursehive/coursehive/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.NewRedisStore),
	fx.Provide(service.NewService),
)
