package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	"github.com/coursehive/coursehive/internal/clock"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gormCartRepo struct{}

func (gormCartRepo) Insert(ctx context.Context, db *gorm.DB, cart *cartdomain.Cart) error {
	return db.WithContext(ctx).Create(cart).Error
}

func (gormCartRepo) FindByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (*cartdomain.Cart, error) {
	var cart cartdomain.Cart
	err := db.WithContext(ctx).Where("member_id = ? AND video_id = ?", memberID, videoID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (gormCartRepo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]cartdomain.Cart, error) {
	var carts []cartdomain.Cart
	err := db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at").Find(&carts).Error
	return carts, err
}

func (gormCartRepo) DeleteByPair(ctx context.Context, db *gorm.DB, memberID, videoID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Where("member_id = ? AND video_id = ?", memberID, videoID).Delete(&cartdomain.Cart{})
	return result.RowsAffected, result.Error
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

func newTestService(t *testing.T) (cartdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&cartdomain.Cart{}, &videodomain.Video{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewSystemClock(),
		Repo:      gormCartRepo{},
		VideoRepo: gormVideoRepo{},
	})
	return svc, db, node
}

func seedVideo(t *testing.T, db *gorm.DB, node *snowflake.Node, status videodomain.VideoStatus) snowflake.ID {
	t.Helper()
	video := videodomain.Video{
		ID:        node.Generate(),
		ChannelID: node.Generate(),
		Name:      "video-" + node.Generate().String(),
		Price:     1000,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&video).Error)
	return video.ID
}

func TestToggle_FlipsMembership(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	videoID := seedVideo(t, db, node, videodomain.StatusCreated)

	resp, err := svc.Toggle(ctx, memberID, videoID)
	require.NoError(t, err)
	assert.True(t, resp.InCart)

	resp, err = svc.Toggle(ctx, memberID, videoID)
	require.NoError(t, err)
	assert.False(t, resp.InCart)

	// An even number of toggles leaves the cart as it started.
	var count int64
	require.NoError(t, db.Model(&cartdomain.Cart{}).Where("member_id = ?", memberID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestToggle_ClosedVideoCannotBeAdded(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	videoID := seedVideo(t, db, node, videodomain.StatusClosed)

	_, err := svc.Toggle(ctx, memberID, videoID)
	assert.ErrorIs(t, err, videodomain.ErrVideoClosed)
}

func TestToggle_ClosedVideoCanStillBeRemoved(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	videoID := seedVideo(t, db, node, videodomain.StatusCreated)

	_, err := svc.Toggle(ctx, memberID, videoID)
	require.NoError(t, err)

	// The video closes while sitting in the cart.
	require.NoError(t, db.Model(&videodomain.Video{}).Where("id = ?", videoID).
		Update("status", videodomain.StatusClosed).Error)

	resp, err := svc.Toggle(ctx, memberID, videoID)
	require.NoError(t, err)
	assert.False(t, resp.InCart)
}

func TestToggle_UnknownVideo(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Toggle(context.Background(), node.Generate(), node.Generate())
	assert.ErrorIs(t, err, videodomain.ErrVideoNotFound)
}

func TestList_ReturnsVideoDetails(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	videoID := seedVideo(t, db, node, videodomain.StatusCreated)

	_, err := svc.Toggle(ctx, memberID, videoID)
	require.NoError(t, err)

	items, err := svc.List(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, videoID.String(), items[0].VideoID)
	assert.Equal(t, int64(1000), items[0].Price)
}
