package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cart *Cart) error
	FindByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (*Cart, error)
	FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]Cart, error)
	// DeleteByPair returns how many rows went away. Zero means another
	// request removed the pair first.
	DeleteByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (int64, error)
}
