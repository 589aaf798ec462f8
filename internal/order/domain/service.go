package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrderRequest struct {
	VideoIDs  []snowflake.ID
	UsePoints int64
}

type OrderItemResponse struct {
	VideoID string `json:"video_id"`
	Price   int64  `json:"price"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Status        OrderStatus         `json:"status"`
	TotalPrice    int64               `json:"total_price"`
	UsedPoints    int64               `json:"used_points"`
	PayableAmount int64               `json:"payable_amount"`
	Items         []OrderItemResponse `json:"items"`
}

type Service interface {
	// Create builds a PENDING order from the given videos. Closed or unknown
	// videos reject the whole order.
	Create(ctx context.Context, memberID snowflake.ID, req CreateOrderRequest) (OrderResponse, error)
	// Complete settles the order: debits reserved points, grants purchase
	// rewards per item, clears the member's cart of the purchased videos.
	// All of it commits atomically, exactly once per order.
	Complete(ctx context.Context, orderID snowflake.ID, paymentKey string) error
	Cancel(ctx context.Context, memberID, orderID snowflake.ID) error
	// IsPurchased reports whether the member holds the video through a
	// completed order.
	IsPurchased(ctx context.Context, memberID, videoID snowflake.ID) (bool, error)
	Get(ctx context.Context, memberID, orderID snowflake.ID) (OrderResponse, error)
	ListByMember(ctx context.Context, memberID snowflake.ID) ([]OrderResponse, error)
}

var (
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrEmptyOrder       = errors.New("empty_order")
	ErrAlreadyCompleted = errors.New("order_already_completed")
	ErrAlreadyCanceled  = errors.New("order_already_canceled")
	ErrNotPurchased     = errors.New("video_not_purchased")
)
