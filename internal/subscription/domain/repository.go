package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (*Subscription, error)
	FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]Subscription, error)
	DeleteByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (int64, error)
}
