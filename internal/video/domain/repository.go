package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, video *Video) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Video, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Video, error)
	FindByChannelID(ctx context.Context, db *gorm.DB, channelID snowflake.ID) ([]Video, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status VideoStatus, fileKey string) error
}
