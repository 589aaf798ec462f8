// Package domain contains the reply model, a purchased-only review on a
// video. One reply per member per video.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Reply struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MemberID  snowflake.ID `gorm:"not null;uniqueIndex:ux_replies_pair"`
	VideoID   snowflake.ID `gorm:"not null;uniqueIndex:ux_replies_pair"`
	Content   string       `gorm:"type:text;not null"`
	Star      int          `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reply) TableName() string { return "replies" }
