package providers

import (
	"github.com/coursehive/coursehive/internal/providers/email"
	"github.com/coursehive/coursehive/internal/providers/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	storage.Module,
)
