package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	obsmetrics "github.com/coursehive/coursehive/internal/observability"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
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
	Repo       orderdomain.Repository
	VideoRepo  videodomain.Repository
	Ledger     memberdomain.Ledger
	MemberSvc  memberdomain.Service
	RewardSvc  rewarddomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       orderdomain.Repository
	videoRepo  videodomain.Repository
	ledger     memberdomain.Ledger
	memberSvc  memberdomain.Service
	rewardSvc  rewarddomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("order.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		videoRepo:  p.VideoRepo,
		ledger:     p.Ledger,
		memberSvc:  p.MemberSvc,
		rewardSvc:  p.RewardSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, memberID snowflake.ID, req orderdomain.CreateOrderRequest) (orderdomain.OrderResponse, error) {
	if len(req.VideoIDs) == 0 {
		return orderdomain.OrderResponse{}, orderdomain.ErrEmptyOrder
	}
	if req.UsePoints < 0 {
		return orderdomain.OrderResponse{}, memberdomain.ErrInvalidAmount
	}

	var (
		order orderdomain.Order
		items []orderdomain.OrderVideo
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		videos, err := s.videoRepo.FindByIDs(ctx, tx, req.VideoIDs)
		if err != nil {
			return err
		}
		if len(videos) != len(req.VideoIDs) {
			return videodomain.ErrVideoNotFound
		}

		var total int64
		for i := range videos {
			if !videos[i].Purchasable() {
				return videodomain.ErrVideoClosed
			}
			total += videos[i].Price
		}

		usePoints := req.UsePoints
		if usePoints > total {
			usePoints = total
		}
		if usePoints > 0 {
			if err := s.memberSvc.CheckSufficient(ctx, memberID, usePoints); err != nil {
				return err
			}
		}

		now := s.clock.Now().UTC()
		order = orderdomain.Order{
			ID:            s.genID.Generate(),
			MemberID:      memberID,
			Status:        orderdomain.StatusPending,
			TotalPrice:    total,
			UsedPoints:    usePoints,
			PayableAmount: total - usePoints,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}

		items = make([]orderdomain.OrderVideo, 0, len(videos))
		for i := range videos {
			items = append(items, orderdomain.OrderVideo{
				ID:      s.genID.Generate(),
				OrderID: order.ID,
				VideoID: videos[i].ID,
				Price:   videos[i].Price,
			})
		}
		return s.repo.InsertVideos(ctx, tx, items)
	})
	if err != nil {
		return orderdomain.OrderResponse{}, err
	}

	return toResponse(&order, items), nil
}

func (s *Service) Complete(ctx context.Context, orderID snowflake.ID, paymentKey string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return orderdomain.ErrOrderNotFound
		}
		switch order.Status {
		case orderdomain.StatusCompleted:
			return orderdomain.ErrAlreadyCompleted
		case orderdomain.StatusCanceled:
			return orderdomain.ErrAlreadyCanceled
		}

		if order.UsedPoints > 0 {
			if err := s.ledger.DebitTx(ctx, tx, order.MemberID, order.UsedPoints); err != nil {
				return err
			}
		}

		items, err := s.repo.FindVideos(ctx, tx, orderID)
		if err != nil {
			return err
		}
		videoIDs := make([]snowflake.ID, 0, len(items))
		for _, item := range items {
			videoIDs = append(videoIDs, item.VideoID)
			points := s.rewardSvc.PurchasePoints(item.Price)
			if points == 0 {
				continue
			}
			if _, err := s.rewardSvc.GrantTx(ctx, tx, order.MemberID, rewarddomain.SourceVideo, item.VideoID, points); err != nil {
				return err
			}
		}

		if err := s.repo.ClearCartItems(ctx, tx, order.MemberID, videoIDs); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, tx, orderID, orderdomain.StatusCompleted, paymentKey)
	})
	if err != nil {
		return err
	}

	s.obsMetrics.RecordOrderCompleted(ctx)
	s.log.Info("order completed", zap.String("order_id", orderID.String()))
	return nil
}

func (s *Service) Cancel(ctx context.Context, memberID, orderID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil || order.MemberID != memberID {
			return orderdomain.ErrOrderNotFound
		}
		switch order.Status {
		case orderdomain.StatusCompleted:
			return orderdomain.ErrAlreadyCompleted
		case orderdomain.StatusCanceled:
			return orderdomain.ErrAlreadyCanceled
		}
		return s.repo.UpdateStatus(ctx, tx, orderID, orderdomain.StatusCanceled, "")
	})
}

func (s *Service) IsPurchased(ctx context.Context, memberID, videoID snowflake.ID) (bool, error) {
	return s.repo.HasCompletedPurchase(ctx, s.db, memberID, videoID)
}

func (s *Service) Get(ctx context.Context, memberID, orderID snowflake.ID) (orderdomain.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderResponse{}, err
	}
	if order == nil || order.MemberID != memberID {
		return orderdomain.OrderResponse{}, orderdomain.ErrOrderNotFound
	}
	items, err := s.repo.FindVideos(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderResponse{}, err
	}
	return toResponse(order, items), nil
}

func (s *Service) ListByMember(ctx context.Context, memberID snowflake.ID) ([]orderdomain.OrderResponse, error) {
	orders, err := s.repo.FindByMemberID(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	responses := make([]orderdomain.OrderResponse, 0, len(orders))
	for i := range orders {
		items, err := s.repo.FindVideos(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, toResponse(&orders[i], items))
	}
	return responses, nil
}

func toResponse(order *orderdomain.Order, items []orderdomain.OrderVideo) orderdomain.OrderResponse {
	itemResponses := make([]orderdomain.OrderItemResponse, 0, len(items))
	for _, item := range items {
		itemResponses = append(itemResponses, orderdomain.OrderItemResponse{
			VideoID: item.VideoID.String(),
			Price:   item.Price,
		})
	}
	return orderdomain.OrderResponse{
		ID:            order.ID.String(),
		Status:        order.Status,
		TotalPrice:    order.TotalPrice,
		UsedPoints:    order.UsedPoints,
		PayableAmount: order.PayableAmount,
		Items:         itemResponses,
	}
}
