package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	replydomain "github.com/coursehive/coursehive/internal/reply/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() replydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reply *replydomain.Reply) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO replies (id, member_id, video_id, content, star, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reply.ID,
		reply.MemberID,
		reply.VideoID,
		reply.Content,
		reply.Star,
		reply.CreatedAt,
		reply.UpdatedAt,
	).Error
}

func (r *repo) FindByVideoID(ctx context.Context, db *gorm.DB, videoID snowflake.ID) ([]replydomain.Reply, error) {
	var replies []replydomain.Reply
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, video_id, content, star, created_at, updated_at
		 FROM replies WHERE video_id = ? ORDER BY created_at DESC`,
		videoID,
	).Scan(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}
