// Package domain contains the member model and the point balance contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Grade is the loyalty tier shown on a member profile.
type Grade string

const (
	GradeBronze Grade = "BRONZE"
	GradeSilver Grade = "SILVER"
	GradeGold   Grade = "GOLD"
)

// Member is a registered user. Balance is the reward point balance; it is
// mutated only through the ledger operations and never set directly.
type Member struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Email        string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:text;not null"`
	Nickname     string       `gorm:"type:text;not null"`
	ImageFile    *string      `gorm:"type:text"`
	Grade        Grade        `gorm:"type:text;not null;default:BRONZE"`
	Balance      int64        `gorm:"not null;default:0"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }
