package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/coursehive/coursehive/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (id, member_id, channel_id, created_at) VALUES (?, ?, ?, ?)`,
		subscription.ID,
		subscription.MemberID,
		subscription.ChannelID,
		subscription.CreatedAt,
	).Error
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, channel_id, created_at FROM subscriptions WHERE member_id = ? AND channel_id = ?`,
		memberID,
		channelID,
	).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	var subscriptions []subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, channel_id, created_at FROM subscriptions WHERE member_id = ? ORDER BY created_at`,
		memberID,
	).Scan(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *repo) DeleteByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM subscriptions WHERE member_id = ? AND channel_id = ?`,
		memberID,
		channelID,
	)
	return result.RowsAffected, result.Error
}
