package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/providers/storage"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
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
	Repo        videodomain.Repository
	ChannelRepo channeldomain.Repository
	Signer      *storage.Signer
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        videodomain.Repository
	channelRepo channeldomain.Repository
	signer      *storage.Signer
}

func NewService(p Params) videodomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("video.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		channelRepo: p.ChannelRepo,
		signer:      p.Signer,
	}
}

func (s *Service) CreateUpload(ctx context.Context, memberID snowflake.ID, req videodomain.CreateUploadRequest) (videodomain.CreateUploadResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return videodomain.CreateUploadResponse{}, videodomain.ErrInvalidName
	}
	if req.Price < 0 {
		return videodomain.CreateUploadResponse{}, videodomain.ErrInvalidPrice
	}

	var video videodomain.Video
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channel, err := s.channelRepo.FindByMemberID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if channel == nil {
			return channeldomain.ErrChannelNotFound
		}

		now := s.clock.Now().UTC()
		video = videodomain.Video{
			ID:          s.genID.Generate(),
			ChannelID:   channel.ID,
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Price:       req.Price,
			Status:      videodomain.StatusUploading,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, &video); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return videodomain.ErrVideoExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return videodomain.CreateUploadResponse{}, err
	}

	objectKey := fmt.Sprintf("videos/%s/%s", video.ChannelID.String(), video.ID.String())
	return videodomain.CreateUploadResponse{
		VideoID:   video.ID.String(),
		UploadURL: s.signer.SignedUploadURL(objectKey, s.clock.Now().UTC()),
	}, nil
}

func (s *Service) ConfirmUpload(ctx context.Context, videoID snowflake.ID, fileKey string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		video, err := s.repo.FindByID(ctx, tx, videoID)
		if err != nil {
			return err
		}
		if video == nil {
			return videodomain.ErrVideoNotFound
		}
		if video.Status != videodomain.StatusUploading {
			return videodomain.ErrInvalidStatus
		}
		return s.repo.UpdateStatus(ctx, tx, videoID, videodomain.StatusCreated, fileKey)
	})
}

func (s *Service) Close(ctx context.Context, memberID, videoID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		video, err := s.repo.FindByID(ctx, tx, videoID)
		if err != nil {
			return err
		}
		if video == nil {
			return videodomain.ErrVideoNotFound
		}

		channel, err := s.channelRepo.FindByID(ctx, tx, video.ChannelID)
		if err != nil {
			return err
		}
		if channel == nil || channel.MemberID != memberID {
			return videodomain.ErrNotChannelOwner
		}

		if video.Status == videodomain.StatusClosed {
			return videodomain.ErrVideoClosed
		}
		return s.repo.UpdateStatus(ctx, tx, videoID, videodomain.StatusClosed, video.FileKey)
	})
}

func (s *Service) Get(ctx context.Context, videoID snowflake.ID) (videodomain.VideoResponse, error) {
	video, err := s.repo.FindByID(ctx, s.db, videoID)
	if err != nil {
		return videodomain.VideoResponse{}, err
	}
	if video == nil {
		return videodomain.VideoResponse{}, videodomain.ErrVideoNotFound
	}
	return toResponse(video), nil
}

func (s *Service) ListByChannel(ctx context.Context, channelID snowflake.ID) ([]videodomain.VideoResponse, error) {
	videos, err := s.repo.FindByChannelID(ctx, s.db, channelID)
	if err != nil {
		return nil, err
	}
	responses := make([]videodomain.VideoResponse, 0, len(videos))
	for i := range videos {
		responses = append(responses, toResponse(&videos[i]))
	}
	return responses, nil
}

func toResponse(video *videodomain.Video) videodomain.VideoResponse {
	return videodomain.VideoResponse{
		ID:          video.ID.String(),
		ChannelID:   video.ChannelID.String(),
		Name:        video.Name,
		Description: video.Description,
		Price:       video.Price,
		Status:      video.Status,
	}
}
