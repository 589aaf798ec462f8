// Package domain contains the cart model. A cart row is a member-video pair;
// the unique index makes concurrent toggles collide instead of double-adding.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Cart struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MemberID  snowflake.ID `gorm:"not null;uniqueIndex:ux_carts_pair"`
	VideoID   snowflake.ID `gorm:"not null;uniqueIndex:ux_carts_pair"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Cart) TableName() string { return "carts" }
