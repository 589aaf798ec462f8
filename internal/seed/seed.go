// Package seed bootstraps a demo catalog for development environments.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	demoEmail    = "creator@coursehive.dev"
	demoPassword = "coursehive"
	demoNickname = "demo creator"
	demoChannel  = "CourseHive Originals"
)

// EnsureDemoCatalog seeds a creator, their channel and a few purchasable
// videos. It is a no-op when any member already exists.
func EnsureDemoCatalog(db *gorm.DB, node *snowflake.Node) error {
	if db == nil || node == nil {
		return errors.New("seed requires database and id node")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&memberdomain.Member{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		member := &memberdomain.Member{
			ID:           node.Generate(),
			Email:        demoEmail,
			PasswordHash: string(hash),
			Nickname:     demoNickname,
			Grade:        memberdomain.GradeBronze,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		channel := &channeldomain.Channel{
			ID:       node.Generate(),
			MemberID: member.ID,
			Name:     demoChannel,
		}
		if err := tx.Create(channel).Error; err != nil {
			return err
		}

		videos := []videodomain.Video{
			{Name: "Go for Backend Engineers", Price: 12000},
			{Name: "Practical SQL Transactions", Price: 9900},
			{Name: "Intro to Distributed Locks", Price: 0},
		}
		for i := range videos {
			videos[i].ID = node.Generate()
			videos[i].ChannelID = channel.ID
			videos[i].Status = videodomain.StatusCreated
			videos[i].FileKey = "seed/" + videos[i].ID.String()
		}
		return tx.Create(&videos).Error
	})
}
