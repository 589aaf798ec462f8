package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() rewarddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reward *rewarddomain.Reward) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rewards (
			id, member_id, source_kind, source_id, points, canceled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reward.ID,
		reward.MemberID,
		reward.SourceKind,
		reward.SourceID,
		reward.Points,
		reward.Canceled,
		reward.CreatedAt,
		reward.UpdatedAt,
	).Error
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*rewarddomain.Reward, error) {
	var reward rewarddomain.Reward
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, source_kind, source_id, points, canceled, created_at, updated_at
		 FROM rewards WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&reward).Error
	if err != nil {
		return nil, err
	}
	if reward.ID == 0 {
		return nil, nil
	}
	return &reward, nil
}

func (r *repo) FindBySource(ctx context.Context, db *gorm.DB, kind rewarddomain.SourceKind, sourceID snowflake.ID) ([]rewarddomain.Reward, error) {
	var rewards []rewarddomain.Reward
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, source_kind, source_id, points, canceled, created_at, updated_at
		 FROM rewards WHERE source_kind = ? AND source_id = ?`,
		kind,
		sourceID,
	).Scan(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]rewarddomain.Reward, error) {
	var rewards []rewarddomain.Reward
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, source_kind, source_id, points, canceled, created_at, updated_at
		 FROM rewards WHERE member_id = ? ORDER BY created_at DESC`,
		memberID,
	).Scan(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repo) MarkCanceled(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rewards SET canceled = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	).Error
}
