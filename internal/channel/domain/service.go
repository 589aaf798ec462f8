package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ChannelResponse struct {
	ID              string `json:"id"`
	MemberID        string `json:"member_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	SubscriberCount int64  `json:"subscriber_count"`
}

type UpdateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Service interface {
	// CreateTx creates the member's channel inside the signup transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, name string) (*Channel, error)
	Get(ctx context.Context, channelID snowflake.ID) (ChannelResponse, error)
	GetByMember(ctx context.Context, memberID snowflake.ID) (ChannelResponse, error)
	Update(ctx context.Context, memberID snowflake.ID, req UpdateChannelRequest) error

	// Reconcile recomputes subscriber counters from the subscriptions table
	// and returns how many channels were repaired.
	Reconcile(ctx context.Context) (int64, error)
}

var (
	ErrChannelNotFound = errors.New("channel_not_found")
	ErrChannelExists   = errors.New("channel_exists")
	ErrInvalidName     = errors.New("invalid_channel_name")
)
