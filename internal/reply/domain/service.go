package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateReplyRequest struct {
	Content string `json:"content"`
	Star    int    `json:"star"`
}

type ReplyResponse struct {
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
	VideoID  string `json:"video_id"`
	Content  string `json:"content"`
	Star     int    `json:"star"`
}

type Service interface {
	// Create stores the reply and grants the flat reply reward in the same
	// transaction. Only buyers of the video may reply.
	Create(ctx context.Context, memberID, videoID snowflake.ID, req CreateReplyRequest) (ReplyResponse, error)
	ListByVideo(ctx context.Context, videoID snowflake.ID) ([]ReplyResponse, error)
}

var (
	ErrReplyExists  = errors.New("reply_exists")
	ErrInvalidStar  = errors.New("invalid_star")
	ErrEmptyContent = errors.New("empty_reply_content")
)
