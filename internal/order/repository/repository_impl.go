package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, member_id, status, total_price, used_points, payable_amount, payment_key, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.MemberID,
		order.Status,
		order.TotalPrice,
		order.UsedPoints,
		order.PayableAmount,
		order.PaymentKey,
		order.CompletedAt,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertVideos(ctx context.Context, db *gorm.DB, items []orderdomain.OrderVideo) error {
	for _, item := range items {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO order_videos (id, order_id, video_id, price) VALUES (?, ?, ?, ?)`,
			item.ID,
			item.OrderID,
			item.VideoID,
			item.Price,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, status, total_price, used_points, payable_amount, payment_key, completed_at, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, status, total_price, used_points, payable_amount, payment_key, completed_at, created_at, updated_at
		 FROM orders WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindVideos(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderVideo, error) {
	var items []orderdomain.OrderVideo
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, video_id, price FROM order_videos WHERE order_id = ?`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, status, total_price, used_points, payable_amount, payment_key, completed_at, created_at, updated_at
		 FROM orders WHERE member_id = ? ORDER BY created_at DESC`,
		memberID,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status orderdomain.OrderStatus, paymentKey string) error {
	if status == orderdomain.StatusCompleted {
		return db.WithContext(ctx).Exec(
			`UPDATE orders SET status = ?, payment_key = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status,
			paymentKey,
			time.Now().UTC(),
			id,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}

func (r *repo) HasCompletedPurchase(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM orders o
		 JOIN order_videos ov ON ov.order_id = o.id
		 WHERE o.member_id = ? AND ov.video_id = ? AND o.status = ?`,
		memberID,
		videoID,
		orderdomain.StatusCompleted,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ClearCartItems(ctx context.Context, db *gorm.DB, memberID snowflake.ID, videoIDs []snowflake.ID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM carts WHERE member_id = ? AND video_id IN ?`,
		memberID,
		videoIDs,
	).Error
}
