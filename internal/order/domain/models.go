// Package domain contains the order model and settlement states.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCanceled  OrderStatus = "CANCELED"
)

// Order is a purchase of one or more videos. TotalPrice is the gross sum of
// the line items; UsedPoints is reserved at creation and debited when the
// payment settles; PayableAmount is TotalPrice minus UsedPoints and never
// goes below zero.
type Order struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	MemberID      snowflake.ID `gorm:"not null;index"`
	Status        OrderStatus  `gorm:"type:text;not null;default:PENDING"`
	TotalPrice    int64        `gorm:"not null"`
	UsedPoints    int64        `gorm:"not null;default:0"`
	PayableAmount int64        `gorm:"not null"`
	PaymentKey    string       `gorm:"type:text;not null;default:''"`
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderVideo is a line item. Price is captured at order time so later price
// changes never alter a settled order.
type OrderVideo struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	OrderID snowflake.ID `gorm:"not null;uniqueIndex:ux_order_videos_pair"`
	VideoID snowflake.ID `gorm:"not null;uniqueIndex:ux_order_videos_pair"`
	Price   int64        `gorm:"not null"`
}

// TableName sets the database table name.
func (OrderVideo) TableName() string { return "order_videos" }
