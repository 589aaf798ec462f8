package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/coursehive/coursehive/internal/auth/domain"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"github.com/coursehive/coursehive/internal/providers/email"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	keySession      = "session:%s"
	keyVerifyCode   = "verify:code:%s"
	keyVerifyOK     = "verify:ok:%s"
	minPasswordSize = 8
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     config.Config
	Store      authdomain.Store
	MemberSvc  memberdomain.Service
	MemberRepo memberdomain.Repository
	ChannelSvc channeldomain.Service
	Email      email.Provider `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	store      authdomain.Store
	memberSvc  memberdomain.Service
	memberRepo memberdomain.Repository
	channelSvc channeldomain.Service
	email      email.Provider

	sessionTTL      time.Duration
	verificationTTL time.Duration
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("auth.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		store:           p.Store,
		memberSvc:       p.MemberSvc,
		memberRepo:      p.MemberRepo,
		channelSvc:      p.ChannelSvc,
		email:           p.Email,
		sessionTTL:      time.Duration(p.Config.SessionTTLMinutes) * time.Minute,
		verificationTTL: time.Duration(p.Config.VerificationTTLMinutes) * time.Minute,
	}
}

func (s *Service) RequestVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return authdomain.ErrInvalidCredentials
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, fmt.Sprintf(keyVerifyCode, email), code, s.verificationTTL); err != nil {
		return err
	}

	if s.email != nil {
		body := fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p>", code)
		if err := s.email.Send(ctx, []string{email}, "Verify your email", body); err != nil {
			s.log.Warn("failed to send verification mail", zap.Error(err))
		}
	}

	s.log.Info("verification code issued", zap.String("email", email))
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	stored, err := s.store.Get(ctx, fmt.Sprintf(keyVerifyCode, email))
	if err == authdomain.ErrKeyNotFound {
		return authdomain.ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if stored != strings.TrimSpace(code) {
		return authdomain.ErrInvalidCode
	}

	if err := s.store.Del(ctx, fmt.Sprintf(keyVerifyCode, email)); err != nil {
		return err
	}
	// The verified marker outlives the code so signup does not race the TTL.
	return s.store.Set(ctx, fmt.Sprintf(keyVerifyOK, email), "1", s.verificationTTL*4)
}

func (s *Service) Signup(ctx context.Context, req authdomain.SignupRequest) (authdomain.SessionResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return authdomain.SessionResponse{}, authdomain.ErrInvalidCredentials
	}
	if len(req.Password) < minPasswordSize {
		return authdomain.SessionResponse{}, authdomain.ErrWeakPassword
	}

	if _, err := s.store.Get(ctx, fmt.Sprintf(keyVerifyOK, email)); err != nil {
		if err == authdomain.ErrKeyNotFound {
			return authdomain.SessionResponse{}, authdomain.ErrEmailNotVerified
		}
		return authdomain.SessionResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return authdomain.SessionResponse{}, err
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = email[:strings.Index(email, "@")]
	}

	profile, err := s.memberSvc.Register(ctx, memberdomain.RegisterRequest{
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
	})
	if err != nil {
		return authdomain.SessionResponse{}, err
	}
	memberID, err := snowflake.ParseString(profile.ID)
	if err != nil {
		return authdomain.SessionResponse{}, err
	}

	channelName := strings.TrimSpace(req.ChannelName)
	if channelName == "" {
		channelName = nickname
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.channelSvc.CreateTx(ctx, tx, memberID, channelName)
		return err
	})
	if err != nil {
		return authdomain.SessionResponse{}, err
	}

	if err := s.store.Del(ctx, fmt.Sprintf(keyVerifyOK, email)); err != nil {
		s.log.Warn("failed to drop verification marker", zap.Error(err))
	}

	return s.issueSession(ctx, memberID)
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.SessionResponse, error) {
	email := normalizeEmail(req.Email)
	member, err := s.memberRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return authdomain.SessionResponse{}, err
	}
	if member == nil {
		return authdomain.SessionResponse{}, authdomain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		return authdomain.SessionResponse{}, authdomain.ErrInvalidCredentials
	}
	return s.issueSession(ctx, member.ID)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.store.Del(ctx, fmt.Sprintf(keySession, token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (snowflake.ID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, authdomain.ErrInvalidSession
	}
	value, err := s.store.Get(ctx, fmt.Sprintf(keySession, token))
	if err == authdomain.ErrKeyNotFound {
		return 0, authdomain.ErrInvalidSession
	}
	if err != nil {
		return 0, err
	}
	memberID, err := snowflake.ParseString(value)
	if err != nil {
		return 0, authdomain.ErrInvalidSession
	}
	return memberID, nil
}

func (s *Service) issueSession(ctx context.Context, memberID snowflake.ID) (authdomain.SessionResponse, error) {
	token := uuid.NewString()
	if err := s.store.Set(ctx, fmt.Sprintf(keySession, token), memberID.String(), s.sessionTTL); err != nil {
		return authdomain.SessionResponse{}, err
	}
	return authdomain.SessionResponse{
		Token:     token,
		MemberID:  memberID.String(),
		ExpiresAt: s.clock.Now().UTC().Add(s.sessionTTL),
	}, nil
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
