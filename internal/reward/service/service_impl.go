package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	obsmetrics "github.com/coursehive/coursehive/internal/observability"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
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
	Repo       rewarddomain.Repository
	Ledger     memberdomain.Ledger
	Policy     *config.RewardPolicyHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       rewarddomain.Repository
	ledger     memberdomain.Ledger
	policy     *config.RewardPolicyHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) rewarddomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reward.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		ledger:     p.Ledger,
		policy:     p.Policy,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) GrantTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, kind rewarddomain.SourceKind, sourceID snowflake.ID, points int64) (*rewarddomain.Reward, error) {
	if !kind.Valid() {
		return nil, rewarddomain.ErrInvalidSource
	}
	if points <= 0 {
		return nil, rewarddomain.ErrInvalidPoints
	}

	if err := s.ledger.CreditTx(ctx, tx, memberID, points); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	reward := rewarddomain.Reward{
		ID:         s.genID.Generate(),
		MemberID:   memberID,
		SourceKind: kind,
		SourceID:   sourceID,
		Points:     points,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, tx, &reward); err != nil {
		return nil, err
	}

	s.obsMetrics.RecordRewardGranted(ctx, string(kind))
	return &reward, nil
}

func (s *Service) Grant(ctx context.Context, memberID snowflake.ID, kind rewarddomain.SourceKind, sourceID snowflake.ID, points int64) (*rewarddomain.Reward, error) {
	var reward *rewarddomain.Reward
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reward, err = s.GrantTx(ctx, tx, memberID, kind, sourceID, points)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func (s *Service) CancelTx(ctx context.Context, tx *gorm.DB, rewardID snowflake.ID) error {
	reward, err := s.repo.FindByIDForUpdate(ctx, tx, rewardID)
	if err != nil {
		return err
	}
	if reward == nil {
		return rewarddomain.ErrRewardNotFound
	}
	if reward.Canceled {
		return rewarddomain.ErrAlreadyCanceled
	}

	if err := s.ledger.DebitTx(ctx, tx, reward.MemberID, reward.Points); err != nil {
		return err
	}
	if err := s.repo.MarkCanceled(ctx, tx, rewardID); err != nil {
		return err
	}

	s.obsMetrics.RecordRewardCanceled(ctx)
	return nil
}

func (s *Service) Cancel(ctx context.Context, rewardID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CancelTx(ctx, tx, rewardID)
	})
}

func (s *Service) PurchasePoints(price int64) int64 {
	if price <= 0 {
		return 0
	}
	denominator := s.policy.Get().PurchaseRateDenominator
	return price / denominator
}

func (s *Service) ReplyPoints() int64 {
	return s.policy.Get().ReplyPoint
}

func (s *Service) ListByMember(ctx context.Context, memberID snowflake.ID) ([]rewarddomain.RewardResponse, error) {
	rewards, err := s.repo.FindByMemberID(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	responses := make([]rewarddomain.RewardResponse, 0, len(rewards))
	for _, reward := range rewards {
		responses = append(responses, rewarddomain.RewardResponse{
			ID:         reward.ID.String(),
			SourceKind: reward.SourceKind,
			SourceID:   reward.SourceID.String(),
			Points:     reward.Points,
			Canceled:   reward.Canceled,
		})
	}
	return responses, nil
}
