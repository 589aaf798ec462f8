package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RewardResponse struct {
	ID         string     `json:"id"`
	SourceKind SourceKind `json:"source_kind"`
	SourceID   string     `json:"source_id"`
	Points     int64      `json:"points"`
	Canceled   bool       `json:"canceled"`
}

type Service interface {
	// GrantTx creates the reward and credits the member inside the caller's
	// transaction. Both happen or neither does.
	GrantTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, kind SourceKind, sourceID snowflake.ID, points int64) (*Reward, error)
	Grant(ctx context.Context, memberID snowflake.ID, kind SourceKind, sourceID snowflake.ID, points int64) (*Reward, error)

	// CancelTx reverses a grant inside the caller's transaction. Canceling
	// twice fails with ErrAlreadyCanceled; the debit fails if the member has
	// already spent the points.
	CancelTx(ctx context.Context, tx *gorm.DB, rewardID snowflake.ID) error
	Cancel(ctx context.Context, rewardID snowflake.ID) error

	// PurchasePoints computes the points earned for a purchase amount under
	// the current policy.
	PurchasePoints(price int64) int64
	// ReplyPoints returns the flat grant for writing a reply.
	ReplyPoints() int64

	ListByMember(ctx context.Context, memberID snowflake.ID) ([]RewardResponse, error)
}

var (
	ErrRewardNotFound  = errors.New("reward_not_found")
	ErrAlreadyCanceled = errors.New("reward_already_canceled")
	ErrInvalidSource   = errors.New("invalid_reward_source")
	ErrInvalidPoints   = errors.New("invalid_reward_points")
)
