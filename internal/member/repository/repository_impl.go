package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() memberdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *memberdomain.Member) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO members (
			id, email, password_hash, nickname, image_file, grade, balance, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.Email,
		member.PasswordHash,
		member.Nickname,
		member.ImageFile,
		member.Grade,
		member.Balance,
		member.CreatedAt,
		member.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*memberdomain.Member, error) {
	var member memberdomain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, password_hash, nickname, image_file, grade, balance, created_at, updated_at
		 FROM members WHERE id = ?`,
		id,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*memberdomain.Member, error) {
	var member memberdomain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, password_hash, nickname, image_file, grade, balance, created_at, updated_at
		 FROM members WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*memberdomain.Member, error) {
	var member memberdomain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, password_hash, nickname, image_file, grade, balance, created_at, updated_at
		 FROM members WHERE email = ?`,
		email,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balance int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance,
		id,
	).Error
}

func (r *repo) UpdateProfile(ctx context.Context, db *gorm.DB, id snowflake.ID, nickname string, imageFile *string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET nickname = ?, image_file = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nickname,
		imageFile,
		id,
	).Error
}
