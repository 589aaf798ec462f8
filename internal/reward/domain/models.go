// Package domain contains the reward model. A reward records why points were
// granted and carries enough to reverse the grant later.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SourceKind tags what earned the reward. The polymorphic (source_kind,
// source_id) pair points into the table the kind names.
type SourceKind string

const (
	SourceVideo    SourceKind = "video"
	SourceQuestion SourceKind = "question"
	SourceReply    SourceKind = "reply"
)

var validSourceKinds = map[SourceKind]struct{}{
	SourceVideo:    {},
	SourceQuestion: {},
	SourceReply:    {},
}

// Valid reports whether the kind is one of the known reward sources.
func (k SourceKind) Valid() bool {
	_, ok := validSourceKinds[k]
	return ok
}

type Reward struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	MemberID   snowflake.ID `gorm:"not null;index"`
	SourceKind SourceKind   `gorm:"type:text;not null"`
	SourceID   snowflake.ID `gorm:"not null"`
	Points     int64        `gorm:"not null"`
	Canceled   bool         `gorm:"not null;default:false"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reward) TableName() string { return "rewards" }
