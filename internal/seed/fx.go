package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB, node *snowflake.Node) error {
		if !cfg.IsDevelopment() {
			return nil
		}
		return EnsureDemoCatalog(db, node)
	}),
)
