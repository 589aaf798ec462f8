package video

import (
	"github.com/coursehive/coursehive/internal/video/repository"
	"github.com/coursehive/coursehive/internal/video/service"
	"go.uber.org/fx"
)

var Module = fx.Module("video.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
