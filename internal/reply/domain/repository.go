package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reply *Reply) error
	FindByVideoID(ctx context.Context, db *gorm.DB, videoID snowflake.ID) ([]Reply, error)
}
