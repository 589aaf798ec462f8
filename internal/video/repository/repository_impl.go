package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() videodomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, video *videodomain.Video) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO videos (
			id, channel_id, name, description, price, status, file_key, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.ChannelID,
		video.Name,
		video.Description,
		video.Price,
		video.Status,
		video.FileKey,
		video.CreatedAt,
		video.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*videodomain.Video, error) {
	var video videodomain.Video
	err := db.WithContext(ctx).Raw(
		`SELECT id, channel_id, name, description, price, status, file_key, created_at, updated_at
		 FROM videos WHERE id = ?`,
		id,
	).Scan(&video).Error
	if err != nil {
		return nil, err
	}
	if video.ID == 0 {
		return nil, nil
	}
	return &video, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]videodomain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []videodomain.Video
	err := db.WithContext(ctx).Raw(
		`SELECT id, channel_id, name, description, price, status, file_key, created_at, updated_at
		 FROM videos WHERE id IN ?`,
		ids,
	).Scan(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) FindByChannelID(ctx context.Context, db *gorm.DB, channelID snowflake.ID) ([]videodomain.Video, error) {
	var videos []videodomain.Video
	err := db.WithContext(ctx).Raw(
		`SELECT id, channel_id, name, description, price, status, file_key, created_at, updated_at
		 FROM videos WHERE channel_id = ? ORDER BY created_at DESC`,
		channelID,
	).Scan(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status videodomain.VideoStatus, fileKey string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE videos SET status = ?, file_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		fileKey,
		id,
	).Error
}
