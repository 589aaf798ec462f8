package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() cartdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cart *cartdomain.Cart) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO carts (id, member_id, video_id, created_at) VALUES (?, ?, ?, ?)`,
		cart.ID,
		cart.MemberID,
		cart.VideoID,
		cart.CreatedAt,
	).Error
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (*cartdomain.Cart, error) {
	var cart cartdomain.Cart
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, video_id, created_at FROM carts WHERE member_id = ? AND video_id = ?`,
		memberID,
		videoID,
	).Scan(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.ID == 0 {
		return nil, nil
	}
	return &cart, nil
}

func (r *repo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]cartdomain.Cart, error) {
	var carts []cartdomain.Cart
	err := db.WithContext(ctx).Raw(
		`SELECT id, member_id, video_id, created_at FROM carts WHERE member_id = ? ORDER BY created_at`,
		memberID,
	).Scan(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *repo) DeleteByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM carts WHERE member_id = ? AND video_id = ?`,
		memberID,
		videoID,
	)
	return result.RowsAffected, result.Error
}
