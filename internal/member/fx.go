package member

import (
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"github.com/coursehive/coursehive/internal/member/repository"
	"github.com/coursehive/coursehive/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) memberdomain.Service { return s }),
	fx.Provide(func(s *service.Service) memberdomain.Ledger { return s }),
)
