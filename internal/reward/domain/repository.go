package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reward *Reward) error
	// FindByIDForUpdate locks the reward row so concurrent cancels serialize.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reward, error)
	FindBySource(ctx context.Context, db *gorm.DB, kind SourceKind, sourceID snowflake.ID) ([]Reward, error)
	FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]Reward, error)
	MarkCanceled(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
