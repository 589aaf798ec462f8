package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	replydomain "github.com/coursehive/coursehive/internal/reply/domain"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	"github.com/coursehive/coursehive/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      replydomain.Repository
	OrderSvc  orderdomain.Service
	RewardSvc rewarddomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      replydomain.Repository
	orderSvc  orderdomain.Service
	rewardSvc rewarddomain.Service
}

func NewService(p Params) replydomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("reply.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		orderSvc:  p.OrderSvc,
		rewardSvc: p.RewardSvc,
	}
}

func (s *Service) Create(ctx context.Context, memberID, videoID snowflake.ID, req replydomain.CreateReplyRequest) (replydomain.ReplyResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return replydomain.ReplyResponse{}, replydomain.ErrEmptyContent
	}
	if req.Star < 0 || req.Star > 10 {
		return replydomain.ReplyResponse{}, replydomain.ErrInvalidStar
	}

	purchased, err := s.orderSvc.IsPurchased(ctx, memberID, videoID)
	if err != nil {
		return replydomain.ReplyResponse{}, err
	}
	if !purchased {
		return replydomain.ReplyResponse{}, orderdomain.ErrNotPurchased
	}

	now := s.clock.Now().UTC()
	reply := replydomain.Reply{
		ID:        s.genID.Generate(),
		MemberID:  memberID,
		VideoID:   videoID,
		Content:   content,
		Star:      req.Star,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &reply); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return replydomain.ErrReplyExists
			}
			return err
		}
		points := s.rewardSvc.ReplyPoints()
		if points <= 0 {
			return nil
		}
		_, err := s.rewardSvc.GrantTx(ctx, tx, memberID, rewarddomain.SourceReply, reply.ID, points)
		return err
	})
	if err != nil {
		return replydomain.ReplyResponse{}, err
	}

	return toResponse(&reply), nil
}

func (s *Service) ListByVideo(ctx context.Context, videoID snowflake.ID) ([]replydomain.ReplyResponse, error) {
	replies, err := s.repo.FindByVideoID(ctx, s.db, videoID)
	if err != nil {
		return nil, err
	}
	responses := make([]replydomain.ReplyResponse, 0, len(replies))
	for i := range replies {
		responses = append(responses, toResponse(&replies[i]))
	}
	return responses, nil
}

func toResponse(reply *replydomain.Reply) replydomain.ReplyResponse {
	return replydomain.ReplyResponse{
		ID:       reply.ID.String(),
		MemberID: reply.MemberID.String(),
		VideoID:  reply.VideoID.String(),
		Content:  reply.Content,
		Star:     reply.Star,
	}
}
