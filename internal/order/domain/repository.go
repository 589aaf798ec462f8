package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertVideos(ctx context.Context, db *gorm.DB, items []OrderVideo) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// FindByIDForUpdate locks the order row so completion runs exactly once
	// under concurrent payment callbacks.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindVideos(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderVideo, error)
	FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status OrderStatus, paymentKey string) error
	// HasCompletedPurchase reports whether any completed order of the member
	// contains the video.
	HasCompletedPurchase(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (bool, error)
	// ClearCartItems removes the purchased videos from the member's cart in
	// the settlement transaction.
	ClearCartItems(ctx context.Context, db *gorm.DB, memberID snowflake.ID, videoIDs []snowflake.ID) error
}
