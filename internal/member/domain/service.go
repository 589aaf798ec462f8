package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email        string
	PasswordHash string
	Nickname     string
}

type ProfileResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Nickname  string  `json:"nickname"`
	ImageFile *string `json:"image_file,omitempty"`
	Grade     Grade   `json:"grade"`
	Balance   int64   `json:"balance"`
}

type UpdateProfileRequest struct {
	Nickname  string  `json:"nickname"`
	ImageFile *string `json:"image_file"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (ProfileResponse, error)
	GetProfile(ctx context.Context, memberID snowflake.ID) (ProfileResponse, error)
	UpdateProfile(ctx context.Context, memberID snowflake.ID, req UpdateProfileRequest) error

	// Ledger operations. Each runs in its own transaction and serializes
	// against concurrent mutations of the same member row.
	Credit(ctx context.Context, memberID snowflake.ID, amount int64) error
	Debit(ctx context.Context, memberID snowflake.ID, amount int64) error
	CheckSufficient(ctx context.Context, memberID snowflake.ID, amount int64) error
}

// Ledger is the transaction-scoped balance contract consumed by operations
// that must move points atomically with their own writes (reward grants,
// order settlement). Callers pass the open transaction down.
type Ledger interface {
	CreditTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error
	DebitTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error
}

var (
	ErrMemberNotFound      = errors.New("member_not_found")
	ErrMemberExists        = errors.New("member_exists")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrNotUpdated          = errors.New("member_not_updated")
)
