package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  memberdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  memberdomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req memberdomain.RegisterRequest) (memberdomain.ProfileResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.PasswordHash == "" {
		return memberdomain.ProfileResponse{}, memberdomain.ErrMemberNotFound
	}

	member := memberdomain.Member{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: req.PasswordHash,
		Nickname:     strings.TrimSpace(req.Nickname),
		Grade:        memberdomain.GradeBronze,
		Balance:      0,
		CreatedAt:    s.clock.Now().UTC(),
		UpdatedAt:    s.clock.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return memberdomain.ErrMemberExists
		}
		return s.repo.Insert(ctx, tx, &member)
	})
	if err != nil {
		return memberdomain.ProfileResponse{}, err
	}

	return toProfile(&member), nil
}

func (s *Service) GetProfile(ctx context.Context, memberID snowflake.ID) (memberdomain.ProfileResponse, error) {
	member, err := s.repo.FindByID(ctx, s.db, memberID)
	if err != nil {
		return memberdomain.ProfileResponse{}, err
	}
	if member == nil {
		return memberdomain.ProfileResponse{}, memberdomain.ErrMemberNotFound
	}
	return toProfile(member), nil
}

func (s *Service) UpdateProfile(ctx context.Context, memberID snowflake.ID, req memberdomain.UpdateProfileRequest) error {
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return memberdomain.ErrNotUpdated
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.repo.FindByID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return memberdomain.ErrMemberNotFound
		}
		return s.repo.UpdateProfile(ctx, tx, memberID, nickname, req.ImageFile)
	})
}

func (s *Service) Credit(ctx context.Context, memberID snowflake.ID, amount int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(ctx, tx, memberID, amount)
	})
}

func (s *Service) Debit(ctx context.Context, memberID snowflake.ID, amount int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.DebitTx(ctx, tx, memberID, amount)
	})
}

func (s *Service) CheckSufficient(ctx context.Context, memberID snowflake.ID, amount int64) error {
	if amount < 0 {
		return memberdomain.ErrInvalidAmount
	}
	member, err := s.repo.FindByID(ctx, s.db, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return memberdomain.ErrMemberNotFound
	}
	if member.Balance < amount {
		return memberdomain.ErrInsufficientBalance
	}
	return nil
}

// CreditTx adds points inside the caller's transaction. The member row stays
// locked until the surrounding transaction commits.
func (s *Service) CreditTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return memberdomain.ErrInvalidAmount
	}
	member, err := s.repo.FindByIDForUpdate(ctx, tx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return memberdomain.ErrMemberNotFound
	}
	return s.repo.UpdateBalance(ctx, tx, memberID, member.Balance+amount)
}

// DebitTx removes points inside the caller's transaction. The balance never
// goes below zero.
func (s *Service) DebitTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return memberdomain.ErrInvalidAmount
	}
	member, err := s.repo.FindByIDForUpdate(ctx, tx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return memberdomain.ErrMemberNotFound
	}
	if member.Balance < amount {
		return memberdomain.ErrInsufficientBalance
	}
	return s.repo.UpdateBalance(ctx, tx, memberID, member.Balance-amount)
}

func toProfile(member *memberdomain.Member) memberdomain.ProfileResponse {
	return memberdomain.ProfileResponse{
		ID:        member.ID.String(),
		Email:     member.Email,
		Nickname:  member.Nickname,
		ImageFile: member.ImageFile,
		Grade:     member.Grade,
		Balance:   member.Balance,
	}
}
