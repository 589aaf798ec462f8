package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ToggleResponse struct {
	Subscribed      bool  `json:"subscribed"`
	SubscriberCount int64 `json:"subscriber_count"`
}

type SubscriptionResponse struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
}

type Service interface {
	// Toggle subscribes the member to the channel if not subscribed and
	// unsubscribes otherwise. The channel's subscriber counter moves in the
	// same transaction.
	Toggle(ctx context.Context, memberID, channelID snowflake.ID) (ToggleResponse, error)
	List(ctx context.Context, memberID snowflake.ID) ([]SubscriptionResponse, error)
}

var (
	ErrConcurrentModification = errors.New("concurrent_subscription_modification")
	ErrOwnChannel             = errors.New("own_channel_subscription")
)
