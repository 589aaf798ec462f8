package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ToggleResponse struct {
	InCart bool `json:"in_cart"`
}

type CartItemResponse struct {
	VideoID string `json:"video_id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
}

type Service interface {
	// Toggle adds the video to the cart if absent and removes it if present.
	// Closed videos cannot be added; removal always works.
	Toggle(ctx context.Context, memberID, videoID snowflake.ID) (ToggleResponse, error)
	List(ctx context.Context, memberID snowflake.ID) ([]CartItemResponse, error)
}

var (
	ErrConcurrentModification = errors.New("concurrent_cart_modification")
)
