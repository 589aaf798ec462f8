package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	obsmetrics "github.com/coursehive/coursehive/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       channeldomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       channeldomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) channeldomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("channel.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, name string) (*channeldomain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, channeldomain.ErrInvalidName
	}

	existing, err := s.repo.FindByMemberID(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, channeldomain.ErrChannelExists
	}

	now := s.clock.Now().UTC()
	channel := channeldomain.Channel{
		ID:        s.genID.Generate(),
		MemberID:  memberID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, tx, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (s *Service) Get(ctx context.Context, channelID snowflake.ID) (channeldomain.ChannelResponse, error) {
	channel, err := s.repo.FindByID(ctx, s.db, channelID)
	if err != nil {
		return channeldomain.ChannelResponse{}, err
	}
	if channel == nil {
		return channeldomain.ChannelResponse{}, channeldomain.ErrChannelNotFound
	}
	return toResponse(channel), nil
}

func (s *Service) GetByMember(ctx context.Context, memberID snowflake.ID) (channeldomain.ChannelResponse, error) {
	channel, err := s.repo.FindByMemberID(ctx, s.db, memberID)
	if err != nil {
		return channeldomain.ChannelResponse{}, err
	}
	if channel == nil {
		return channeldomain.ChannelResponse{}, channeldomain.ErrChannelNotFound
	}
	return toResponse(channel), nil
}

func (s *Service) Update(ctx context.Context, memberID snowflake.ID, req channeldomain.UpdateChannelRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return channeldomain.ErrInvalidName
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channel, err := s.repo.FindByMemberID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if channel == nil {
			return channeldomain.ErrChannelNotFound
		}
		return s.repo.Update(ctx, tx, channel.ID, name, strings.TrimSpace(req.Description))
	})
}

func (s *Service) Reconcile(ctx context.Context) (int64, error) {
	var repaired int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drifts, err := s.repo.FindDrifted(ctx, tx)
		if err != nil {
			return err
		}
		for _, drift := range drifts {
			if err := s.repo.UpdateSubscriberCount(ctx, tx, drift.ChannelID, drift.Actual); err != nil {
				return err
			}
			s.log.Warn("repaired subscriber counter drift",
				zap.String("channel_id", drift.ChannelID.String()),
				zap.Int64("stored", drift.Stored),
				zap.Int64("actual", drift.Actual),
			)
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if repaired > 0 {
		s.obsMetrics.RecordDriftRepaired(ctx, repaired)
	}
	return repaired, nil
}

func toResponse(channel *channeldomain.Channel) channeldomain.ChannelResponse {
	return channeldomain.ChannelResponse{
		ID:              channel.ID.String(),
		MemberID:        channel.MemberID.String(),
		Name:            channel.Name,
		Description:     channel.Description,
		SubscriberCount: channel.SubscriberCount,
	}
}
