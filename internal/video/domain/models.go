// Package domain contains the video model and its lifecycle states.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// VideoStatus is the upload lifecycle state. Only CREATED videos are
// purchasable; CLOSED videos reject new carts, orders and subscriptions to
// them are unaffected.
type VideoStatus string

const (
	StatusUploading VideoStatus = "UPLOADING"
	StatusCreated   VideoStatus = "CREATED"
	StatusClosed    VideoStatus = "CLOSED"
)

type Video struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	ChannelID   snowflake.ID `gorm:"not null;uniqueIndex:ux_videos_channel_name"`
	Name        string       `gorm:"type:text;not null;uniqueIndex:ux_videos_channel_name"`
	Description string       `gorm:"type:text;not null;default:''"`
	Price       int64        `gorm:"not null"`
	Status      VideoStatus  `gorm:"type:text;not null;default:UPLOADING"`
	FileKey     string       `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Video) TableName() string { return "videos" }

// Purchasable reports whether the video can enter a cart or an order.
func (v *Video) Purchasable() bool { return v.Status == StatusCreated }
