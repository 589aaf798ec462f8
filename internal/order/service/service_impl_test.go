package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	"github.com/coursehive/coursehive/internal/clock"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gormOrderRepo swaps the locked raw SQL for gorm queries so the tests run
// on sqlite.
type gormOrderRepo struct{}

func (gormOrderRepo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (gormOrderRepo) InsertVideos(ctx context.Context, db *gorm.DB, items []orderdomain.OrderVideo) error {
	return db.WithContext(ctx).Create(&items).Error
}

func (r gormOrderRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r gormOrderRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	return r.FindByID(ctx, db, id)
}

func (gormOrderRepo) FindVideos(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderVideo, error) {
	var items []orderdomain.OrderVideo
	err := db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (gormOrderRepo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (gormOrderRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status orderdomain.OrderStatus, paymentKey string) error {
	updates := map[string]any{"status": status}
	if status == orderdomain.StatusCompleted {
		updates["payment_key"] = paymentKey
		updates["completed_at"] = time.Now().UTC()
	}
	return db.WithContext(ctx).Model(&orderdomain.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (gormOrderRepo) HasCompletedPurchase(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&orderdomain.OrderVideo{}).
		Joins("JOIN orders ON orders.id = order_videos.order_id").
		Where("orders.member_id = ? AND order_videos.video_id = ? AND orders.status = ?",
			memberID, videoID, orderdomain.StatusCompleted).
		Count(&count).Error
	return count > 0, err
}

func (gormOrderRepo) ClearCartItems(ctx context.Context, db *gorm.DB, memberID snowflake.ID, videoIDs []snowflake.ID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("member_id = ? AND video_id IN ?", memberID, videoIDs).
		Delete(&cartdomain.Cart{}).Error
}

type gormVideoRepo struct{}

func (gormVideoRepo) Insert(ctx context.Context, db *gorm.DB, video *videodomain.Video) error {
	return db.WithContext(ctx).Create(video).Error
}

func (gormVideoRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*videodomain.Video, error) {
	var video videodomain.Video
	err := db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (gormVideoRepo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]videodomain.Video, error) {
	var videos []videodomain.Video
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&videos).Error
	return videos, err
}

func (gormVideoRepo) FindByChannelID(ctx context.Context, db *gorm.DB, channelID snowflake.ID) ([]videodomain.Video, error) {
	var videos []videodomain.Video
	err := db.WithContext(ctx).Where("channel_id = ?", channelID).Find(&videos).Error
	return videos, err
}

func (gormVideoRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status videodomain.VideoStatus, fileKey string) error {
	return db.WithContext(ctx).Model(&videodomain.Video{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "file_key": fileKey}).Error
}

type gormLedger struct{}

func (gormLedger) CreditTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return memberdomain.ErrInvalidAmount
	}
	var member memberdomain.Member
	if err := tx.WithContext(ctx).Where("id = ?", memberID).First(&member).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&member).Update("balance", member.Balance+amount).Error
}

func (gormLedger) DebitTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return memberdomain.ErrInvalidAmount
	}
	var member memberdomain.Member
	if err := tx.WithContext(ctx).Where("id = ?", memberID).First(&member).Error; err != nil {
		return err
	}
	if member.Balance < amount {
		return memberdomain.ErrInsufficientBalance
	}
	return tx.WithContext(ctx).Model(&member).Update("balance", member.Balance-amount).Error
}

// memberSvcStub implements only what the order service calls.
type memberSvcStub struct {
	db *gorm.DB
}

func (s memberSvcStub) Register(context.Context, memberdomain.RegisterRequest) (memberdomain.ProfileResponse, error) {
	return memberdomain.ProfileResponse{}, nil
}
func (s memberSvcStub) GetProfile(context.Context, snowflake.ID) (memberdomain.ProfileResponse, error) {
	return memberdomain.ProfileResponse{}, nil
}
func (s memberSvcStub) UpdateProfile(context.Context, snowflake.ID, memberdomain.UpdateProfileRequest) error {
	return nil
}
func (s memberSvcStub) Credit(context.Context, snowflake.ID, int64) error { return nil }
func (s memberSvcStub) Debit(context.Context, snowflake.ID, int64) error  { return nil }

func (s memberSvcStub) CheckSufficient(ctx context.Context, memberID snowflake.ID, amount int64) error {
	var member memberdomain.Member
	if err := s.db.WithContext(ctx).Where("id = ?", memberID).First(&member).Error; err != nil {
		return memberdomain.ErrMemberNotFound
	}
	if member.Balance < amount {
		return memberdomain.ErrInsufficientBalance
	}
	return nil
}

// rewardSvcStub grants through the shared ledger double with the default
// 1-point-per-100 policy.
type rewardSvcStub struct {
	node   *snowflake.Node
	ledger gormLedger
}

func (s rewardSvcStub) GrantTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, kind rewarddomain.SourceKind, sourceID snowflake.ID, points int64) (*rewarddomain.Reward, error) {
	if !kind.Valid() {
		return nil, rewarddomain.ErrInvalidSource
	}
	if points <= 0 {
		return nil, rewarddomain.ErrInvalidPoints
	}
	if err := s.ledger.CreditTx(ctx, tx, memberID, points); err != nil {
		return nil, err
	}
	reward := rewarddomain.Reward{
		ID:         s.node.Generate(),
		MemberID:   memberID,
		SourceKind: kind,
		SourceID:   sourceID,
		Points:     points,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (s rewardSvcStub) Grant(context.Context, snowflake.ID, rewarddomain.SourceKind, snowflake.ID, int64) (*rewarddomain.Reward, error) {
	return nil, nil
}
func (s rewardSvcStub) CancelTx(context.Context, *gorm.DB, snowflake.ID) error { return nil }
func (s rewardSvcStub) Cancel(context.Context, snowflake.ID) error             { return nil }
func (s rewardSvcStub) PurchasePoints(price int64) int64 {
	if price <= 0 {
		return 0
	}
	return price / 100
}
func (s rewardSvcStub) ReplyPoints() int64 { return 10 }
func (s rewardSvcStub) ListByMember(context.Context, snowflake.ID) ([]rewarddomain.RewardResponse, error) {
	return nil, nil
}

type fixture struct {
	svc  orderdomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	// A plain ":memory:" DSN gives every pooled connection its own empty
	// database; the member stub queries outside the service transaction, so
	// the schema must be shared across connections.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&memberdomain.Member{},
		&videodomain.Video{},
		&orderdomain.Order{},
		&orderdomain.OrderVideo{},
		&rewarddomain.Reward{},
		&cartdomain.Cart{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewSystemClock(),
		Repo:      gormOrderRepo{},
		VideoRepo: gormVideoRepo{},
		Ledger:    gormLedger{},
		MemberSvc: memberSvcStub{db: db},
		RewardSvc: rewardSvcStub{node: node, ledger: gormLedger{}},
	})
	return fixture{svc: svc, db: db, node: node}
}

func (f fixture) seedMember(t *testing.T, balance int64) snowflake.ID {
	t.Helper()
	member := memberdomain.Member{
		ID:        f.node.Generate(),
		Email:     f.node.Generate().String() + "@example.com",
		Nickname:  "m",
		Grade:     memberdomain.GradeBronze,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member.ID
}

func (f fixture) seedVideo(t *testing.T, price int64, status videodomain.VideoStatus) snowflake.ID {
	t.Helper()
	video := videodomain.Video{
		ID:        f.node.Generate(),
		ChannelID: f.node.Generate(),
		Name:      "video-" + f.node.Generate().String(),
		Price:     price,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&video).Error)
	return video.ID
}

func (f fixture) balance(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	var member memberdomain.Member
	require.NoError(t, f.db.Where("id = ?", id).First(&member).Error)
	return member.Balance
}

func TestCreate_RejectsEmptyOrder(t *testing.T) {
	f := newFixture(t)
	memberID := f.seedMember(t, 0)

	_, err := f.svc.Create(context.Background(), memberID, orderdomain.CreateOrderRequest{})
	assert.ErrorIs(t, err, orderdomain.ErrEmptyOrder)
}

func TestCreate_RejectsClosedVideo(t *testing.T) {
	f := newFixture(t)
	memberID := f.seedMember(t, 0)
	videoID := f.seedVideo(t, 1000, videodomain.StatusClosed)

	_, err := f.svc.Create(context.Background(), memberID, orderdomain.CreateOrderRequest{
		VideoIDs: []snowflake.ID{videoID},
	})
	assert.ErrorIs(t, err, videodomain.ErrVideoClosed)
}

func TestCreate_ClampsPointsToTotal(t *testing.T) {
	f := newFixture(t)
	memberID := f.seedMember(t, 5000)
	videoID := f.seedVideo(t, 1000, videodomain.StatusCreated)

	resp, err := f.svc.Create(context.Background(), memberID, orderdomain.CreateOrderRequest{
		VideoIDs:  []snowflake.ID{videoID},
		UsePoints: 3000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), resp.TotalPrice)
	assert.Equal(t, int64(1000), resp.UsedPoints)
	assert.Equal(t, int64(0), resp.PayableAmount)
}

func TestCreate_RejectsInsufficientPoints(t *testing.T) {
	f := newFixture(t)
	memberID := f.seedMember(t, 10)
	videoID := f.seedVideo(t, 1000, videodomain.StatusCreated)

	_, err := f.svc.Create(context.Background(), memberID, orderdomain.CreateOrderRequest{
		VideoIDs:  []snowflake.ID{videoID},
		UsePoints: 500,
	})
	assert.ErrorIs(t, err, memberdomain.ErrInsufficientBalance)
}

func TestComplete_SettlesExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberID := f.seedMember(t, 200)
	videoA := f.seedVideo(t, 999, videodomain.StatusCreated)
	videoB := f.seedVideo(t, 1000, videodomain.StatusCreated)

	resp, err := f.svc.Create(ctx, memberID, orderdomain.CreateOrderRequest{
		VideoIDs:  []snowflake.ID{videoA, videoB},
		UsePoints: 200,
	})
	require.NoError(t, err)
	orderID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Complete(ctx, orderID, "pay_abc"))

	// 200 debited, 9 + 10 granted back.
	assert.Equal(t, int64(19), f.balance(t, memberID))

	var rewards []rewarddomain.Reward
	require.NoError(t, f.db.Where("member_id = ?", memberID).Find(&rewards).Error)
	assert.Len(t, rewards, 2)

	purchased, err := f.svc.IsPurchased(ctx, memberID, videoA)
	require.NoError(t, err)
	assert.True(t, purchased)

	// The second settlement attempt must change nothing.
	err = f.svc.Complete(ctx, orderID, "pay_abc")
	assert.ErrorIs(t, err, orderdomain.ErrAlreadyCompleted)
	assert.Equal(t, int64(19), f.balance(t, memberID))
	require.NoError(t, f.db.Where("member_id = ?", memberID).Find(&rewards).Error)
	assert.Len(t, rewards, 2)
}

func TestComplete_CheapItemEarnsNoReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberID := f.seedMember(t, 0)
	videoID := f.seedVideo(t, 50, videodomain.StatusCreated)

	resp, err := f.svc.Create(ctx, memberID, orderdomain.CreateOrderRequest{
		VideoIDs: []snowflake.ID{videoID},
	})
	require.NoError(t, err)
	orderID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Complete(ctx, orderID, "pay_small"))

	var rewards []rewarddomain.Reward
	require.NoError(t, f.db.Where("member_id = ?", memberID).Find(&rewards).Error)
	assert.Empty(t, rewards)
	assert.Equal(t, int64(0), f.balance(t, memberID))
}

func TestComplete_ClearsCartEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberID := f.seedMember(t, 0)
	videoID := f.seedVideo(t, 1000, videodomain.StatusCreated)

	require.NoError(t, f.db.Create(&cartdomain.Cart{
		ID:        f.node.Generate(),
		MemberID:  memberID,
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
	}).Error)

	resp, err := f.svc.Create(ctx, memberID, orderdomain.CreateOrderRequest{
		VideoIDs: []snowflake.ID{videoID},
	})
	require.NoError(t, err)
	orderID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Complete(ctx, orderID, "pay_cart"))

	var count int64
	require.NoError(t, f.db.Model(&cartdomain.Cart{}).Where("member_id = ?", memberID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCancel_PendingOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberID := f.seedMember(t, 0)
	videoID := f.seedVideo(t, 1000, videodomain.StatusCreated)

	resp, err := f.svc.Create(ctx, memberID, orderdomain.CreateOrderRequest{
		VideoIDs: []snowflake.ID{videoID},
	})
	require.NoError(t, err)
	orderID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, memberID, orderID))

	err = f.svc.Cancel(ctx, memberID, orderID)
	assert.ErrorIs(t, err, orderdomain.ErrAlreadyCanceled)

	err = f.svc.Complete(ctx, orderID, "pay_late")
	assert.ErrorIs(t, err, orderdomain.ErrAlreadyCanceled)
}

func TestCancel_CompletedOrderRefuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberID := f.seedMember(t, 0)
	videoID := f.seedVideo(t, 1000, videodomain.StatusCreated)

	resp, err := f.svc.Create(ctx, memberID, orderdomain.CreateOrderRequest{
		VideoIDs: []snowflake.ID{videoID},
	})
	require.NoError(t, err)
	orderID, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Complete(ctx, orderID, "pay_done"))

	err = f.svc.Cancel(ctx, memberID, orderID)
	assert.ErrorIs(t, err, orderdomain.ErrAlreadyCompleted)
}
