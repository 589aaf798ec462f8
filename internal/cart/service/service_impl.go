package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	"github.com/coursehive/coursehive/internal/clock"
	obsmetrics "github.com/coursehive/coursehive/internal/observability"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/coursehive/coursehive/pkg/db"
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
	Repo       cartdomain.Repository
	VideoRepo  videodomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       cartdomain.Repository
	videoRepo  videodomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) cartdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("cart.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		videoRepo:  p.VideoRepo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Toggle(ctx context.Context, memberID, videoID snowflake.ID) (cartdomain.ToggleResponse, error) {
	var inCart bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByPair(ctx, tx, memberID, videoID)
		if err != nil {
			return err
		}

		if existing != nil {
			removed, err := s.repo.DeleteByPair(ctx, tx, memberID, videoID)
			if err != nil {
				return err
			}
			if removed == 0 {
				return cartdomain.ErrConcurrentModification
			}
			inCart = false
			return nil
		}

		video, err := s.videoRepo.FindByID(ctx, tx, videoID)
		if err != nil {
			return err
		}
		if video == nil {
			return videodomain.ErrVideoNotFound
		}
		if !video.Purchasable() {
			return videodomain.ErrVideoClosed
		}

		cart := cartdomain.Cart{
			ID:        s.genID.Generate(),
			MemberID:  memberID,
			VideoID:   videoID,
			CreatedAt: s.clock.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, tx, &cart); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return cartdomain.ErrConcurrentModification
			}
			return err
		}
		inCart = true
		return nil
	})
	if err != nil {
		return cartdomain.ToggleResponse{}, err
	}

	s.obsMetrics.RecordToggle(ctx, "cart", inCart)
	return cartdomain.ToggleResponse{InCart: inCart}, nil
}

func (s *Service) List(ctx context.Context, memberID snowflake.ID) ([]cartdomain.CartItemResponse, error) {
	carts, err := s.repo.FindByMemberID(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, nil
	}

	videoIDs := make([]snowflake.ID, 0, len(carts))
	for _, cart := range carts {
		videoIDs = append(videoIDs, cart.VideoID)
	}
	videos, err := s.videoRepo.FindByIDs(ctx, s.db, videoIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]*videodomain.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}

	items := make([]cartdomain.CartItemResponse, 0, len(carts))
	for _, cart := range carts {
		video, ok := byID[cart.VideoID]
		if !ok {
			continue
		}
		items = append(items, cartdomain.CartItemResponse{
			VideoID: video.ID.String(),
			Name:    video.Name,
			Price:   video.Price,
		})
	}
	return items, nil
}
