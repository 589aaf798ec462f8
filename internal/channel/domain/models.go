// Package domain contains the channel model. Every member owns exactly one
// channel, created at signup.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Channel is a member's publishing surface. SubscriberCount is a denormalized
// counter kept in step with the subscriptions table inside the toggle
// transaction and repaired by the reconciliation job.
type Channel struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	MemberID        snowflake.ID `gorm:"not null;uniqueIndex"`
	Name            string       `gorm:"type:text;not null"`
	Description     string       `gorm:"type:text;not null;default:''"`
	SubscriberCount int64        `gorm:"not null;default:0"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Channel) TableName() string { return "channels" }
