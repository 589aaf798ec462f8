package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	"github.com/coursehive/coursehive/internal/migration"
	"github.com/coursehive/coursehive/internal/observability"
	"github.com/coursehive/coursehive/internal/scheduler"
	"github.com/coursehive/coursehive/internal/seed"
	"github.com/coursehive/coursehive/internal/server"
	"github.com/coursehive/coursehive/pkg/db"
	"github.com/coursehive/coursehive/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
