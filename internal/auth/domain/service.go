// Package domain contains the signup, login and session contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Nickname    string `json:"nickname"`
	ChannelName string `json:"channel_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	MemberID  string    `json:"member_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service interface {
	// RequestVerification issues a short-lived code for the email. Delivery
	// is out of band; the code is written to the store only.
	RequestVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) error
	// Signup creates the member and their channel. The email must have been
	// verified first.
	Signup(ctx context.Context, req SignupRequest) (SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (SessionResponse, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves an opaque session token to the member it was
	// issued for.
	Authenticate(ctx context.Context, token string) (snowflake.ID, error)
}

// Store is the session and verification code backend. Production uses redis;
// tests use an in-memory map.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// ErrKeyNotFound is returned by Store.Get for missing or expired keys.
var ErrKeyNotFound = errors.New("key_not_found")

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrEmailNotVerified   = errors.New("email_not_verified")
	ErrInvalidCode        = errors.New("invalid_verification_code")
	ErrWeakPassword       = errors.New("weak_password")
)
