package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateUploadRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

type CreateUploadResponse struct {
	VideoID   string `json:"video_id"`
	UploadURL string `json:"upload_url"`
}

type VideoResponse struct {
	ID          string      `json:"id"`
	ChannelID   string      `json:"channel_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Status      VideoStatus `json:"status"`
}

type Service interface {
	// CreateUpload registers the video in UPLOADING state and returns a
	// signed URL the client PUTs the file to.
	CreateUpload(ctx context.Context, memberID snowflake.ID, req CreateUploadRequest) (CreateUploadResponse, error)
	// ConfirmUpload moves the video from UPLOADING to CREATED once the
	// storage callback verifies the file landed.
	ConfirmUpload(ctx context.Context, videoID snowflake.ID, fileKey string) error
	// Close retires the video. Closed videos reject new carts and orders.
	Close(ctx context.Context, memberID, videoID snowflake.ID) error
	Get(ctx context.Context, videoID snowflake.ID) (VideoResponse, error)
	ListByChannel(ctx context.Context, channelID snowflake.ID) ([]VideoResponse, error)
}

var (
	ErrVideoNotFound   = errors.New("video_not_found")
	ErrInvalidName     = errors.New("invalid_video_name")
	ErrVideoExists     = errors.New("video_exists")
	ErrVideoClosed     = errors.New("video_closed")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidStatus   = errors.New("invalid_video_status")
	ErrNotChannelOwner = errors.New("not_channel_owner")
)
