package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	// FindByIDForUpdate locks the member row for the duration of the
	// surrounding transaction. Every balance mutation goes through it.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Member, error)
	UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balance int64) error
	UpdateProfile(ctx context.Context, db *gorm.DB, id snowflake.ID, nickname string, imageFile *string) error
}
