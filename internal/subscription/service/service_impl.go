package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	obsmetrics "github.com/coursehive/coursehive/internal/observability"
	subscriptiondomain "github.com/coursehive/coursehive/internal/subscription/domain"
	"github.com/coursehive/coursehive/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        subscriptiondomain.Repository
	ChannelRepo channeldomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        subscriptiondomain.Repository
	channelRepo channeldomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("subscription.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		channelRepo: p.ChannelRepo,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Toggle(ctx context.Context, memberID, channelID snowflake.ID) (subscriptiondomain.ToggleResponse, error) {
	var resp subscriptiondomain.ToggleResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The channel row lock serializes counter updates with other toggles
		// on the same channel.
		channel, err := s.channelRepo.FindByIDForUpdate(ctx, tx, channelID)
		if err != nil {
			return err
		}
		if channel == nil {
			return channeldomain.ErrChannelNotFound
		}
		if channel.MemberID == memberID {
			return subscriptiondomain.ErrOwnChannel
		}

		existing, err := s.repo.FindByPair(ctx, tx, memberID, channelID)
		if err != nil {
			return err
		}

		if existing != nil {
			removed, err := s.repo.DeleteByPair(ctx, tx, memberID, channelID)
			if err != nil {
				return err
			}
			if removed == 0 {
				return subscriptiondomain.ErrConcurrentModification
			}
			count := channel.SubscriberCount - 1
			if count < 0 {
				count = 0
			}
			if err := s.channelRepo.UpdateSubscriberCount(ctx, tx, channelID, count); err != nil {
				return err
			}
			resp = subscriptiondomain.ToggleResponse{Subscribed: false, SubscriberCount: count}
			return nil
		}

		subscription := subscriptiondomain.Subscription{
			ID:        s.genID.Generate(),
			MemberID:  memberID,
			ChannelID: channelID,
			CreatedAt: s.clock.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, tx, &subscription); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return subscriptiondomain.ErrConcurrentModification
			}
			return err
		}
		count := channel.SubscriberCount + 1
		if err := s.channelRepo.UpdateSubscriberCount(ctx, tx, channelID, count); err != nil {
			return err
		}
		resp = subscriptiondomain.ToggleResponse{Subscribed: true, SubscriberCount: count}
		return nil
	})
	if err != nil {
		return subscriptiondomain.ToggleResponse{}, err
	}

	s.obsMetrics.RecordToggle(ctx, "subscription", resp.Subscribed)
	return resp, nil
}

func (s *Service) List(ctx context.Context, memberID snowflake.ID) ([]subscriptiondomain.SubscriptionResponse, error) {
	subscriptions, err := s.repo.FindByMemberID(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	responses := make([]subscriptiondomain.SubscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		channel, err := s.channelRepo.FindByID(ctx, s.db, subscription.ChannelID)
		if err != nil {
			return nil, err
		}
		if channel == nil {
			continue
		}
		responses = append(responses, subscriptiondomain.SubscriptionResponse{
			ChannelID: channel.ID.String(),
			Name:      channel.Name,
		})
	}
	return responses, nil
}
