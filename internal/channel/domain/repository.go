package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Drift is a channel whose stored subscriber counter disagrees with the
// subscriptions table.
type Drift struct {
	ChannelID snowflake.ID
	Stored    int64
	Actual    int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, channel *Channel) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Channel, error)
	// FindByIDForUpdate locks the channel row so the subscriber counter and
	// the subscriptions table move together.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Channel, error)
	FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) (*Channel, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, name, description string) error
	UpdateSubscriberCount(ctx context.Context, db *gorm.DB, id snowflake.ID, count int64) error
	FindDrifted(ctx context.Context, db *gorm.DB) ([]Drift, error)
}
