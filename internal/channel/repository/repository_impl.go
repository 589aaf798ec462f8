package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() channeldomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, channel *channeldomain.Channel) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO channels (
			id, member_id, name, description, subscriber_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		channel.ID,
		channel.MemberID,
		channel.Name,
		channel.Description,
		channel.SubscriberCount,
		channel.CreatedAt,
		channel.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*channeldomain.Channel, error) {
	var channel channeldomain.Channel
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, name, description, subscriber_count, created_at, updated_at
		 FROM channels WHERE id = ?`,
		id,
	).Scan(&channel).Error
	if err != nil {
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*channeldomain.Channel, error) {
	var channel channeldomain.Channel
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, name, description, subscriber_count, created_at, updated_at
		 FROM channels WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&channel).Error
	if err != nil {
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *repo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) (*channeldomain.Channel, error) {
	var channel channeldomain.Channel
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, name, description, subscriber_count, created_at, updated_at
		 FROM channels WHERE member_id = ?`,
		memberID,
	).Scan(&channel).Error
	if err != nil {
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, name, description string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE channels SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name,
		description,
		id,
	).Error
}

func (r *repo) UpdateSubscriberCount(ctx context.Context, db *gorm.DB, id snowflake.ID, count int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE channels SET subscriber_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		count,
		id,
	).Error
}

func (r *repo) FindDrifted(ctx context.Context, db *gorm.DB) ([]channeldomain.Drift, error) {
	var drifts []channeldomain.Drift
	err := db.WithContext(ctx).Raw(
		`SELECT c.id AS channel_id, c.subscriber_count AS stored, COUNT(s.id) AS actual
		 FROM channels c
		 LEFT JOIN subscriptions s ON s.channel_id = c.id
		 GROUP BY c.id, c.subscriber_count
		 HAVING c.subscriber_count <> COUNT(s.id)`,
	).Scan(&drifts).Error
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
