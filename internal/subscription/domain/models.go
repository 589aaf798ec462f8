// Package domain contains the subscription model, a member-channel pair with
// a unique index so concurrent toggles collide instead of double-counting.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Subscription struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MemberID  snowflake.ID `gorm:"not null;uniqueIndex:ux_subscriptions_pair"`
	ChannelID snowflake.ID `gorm:"not null;uniqueIndex:ux_subscriptions_pair"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
