package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	subscriptiondomain "github.com/coursehive/coursehive/internal/subscription/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gormSubscriptionRepo struct{}

func (gormSubscriptionRepo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (gormSubscriptionRepo) FindByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).Where("member_id = ? AND channel_id = ?", memberID, channelID).First(&subscription).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (gormSubscriptionRepo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	var subscriptions []subscriptiondomain.Subscription
	err := db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at").Find(&subscriptions).Error
	return subscriptions, err
}

func (gormSubscriptionRepo) DeleteByPair(ctx context.Context, db *gorm.DB, memberID, channelID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Where("member_id = ? AND channel_id = ?", memberID, channelID).
		Delete(&subscriptiondomain.Subscription{})
	return result.RowsAffected, result.Error
}

type gormChannelRepo struct{}

func (gormChannelRepo) Insert(ctx context.Context, db *gorm.DB, channel *channeldomain.Channel) error {
	return db.WithContext(ctx).Create(channel).Error
}

func (r gormChannelRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*channeldomain.Channel, error) {
	var channel channeldomain.Channel
	err := db.WithContext(ctx).Where("id = ?", id).First(&channel).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r gormChannelRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*channeldomain.Channel, error) {
	return r.FindByID(ctx, db, id)
}

func (gormChannelRepo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) (*channeldomain.Channel, error) {
	var channel channeldomain.Channel
	err := db.WithContext(ctx).Where("member_id = ?", memberID).First(&channel).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (gormChannelRepo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, name, description string) error {
	return db.WithContext(ctx).Model(&channeldomain.Channel{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description}).Error
}

func (gormChannelRepo) UpdateSubscriberCount(ctx context.Context, db *gorm.DB, id snowflake.ID, count int64) error {
	return db.WithContext(ctx).Model(&channeldomain.Channel{}).Where("id = ?", id).
		Update("subscriber_count", count).Error
}

func (gormChannelRepo) FindDrifted(ctx context.Context, db *gorm.DB) ([]channeldomain.Drift, error) {
	var drifts []channeldomain.Drift
	err := db.WithContext(ctx).Raw(
		`SELECT c.id AS channel_id, c.subscriber_count AS stored, COUNT(s.id) AS actual
		 FROM channels c
		 LEFT JOIN subscriptions s ON s.channel_id = c.id
		 GROUP BY c.id, c.subscriber_count
		 HAVING c.subscriber_count <> COUNT(s.id)`,
	).Scan(&drifts).Error
	return drifts, err
}

func newTestService(t *testing.T) (subscriptiondomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&subscriptiondomain.Subscription{}, &channeldomain.Channel{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewSystemClock(),
		Repo:        gormSubscriptionRepo{},
		ChannelRepo: gormChannelRepo{},
	})
	return svc, db, node
}

func seedChannel(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID) snowflake.ID {
	t.Helper()
	channel := channeldomain.Channel{
		ID:        node.Generate(),
		MemberID:  ownerID,
		Name:      "channel-" + node.Generate().String(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&channel).Error)
	return channel.ID
}

func subscriberCount(t *testing.T, db *gorm.DB, id snowflake.ID) int64 {
	t.Helper()
	var channel channeldomain.Channel
	require.NoError(t, db.Where("id = ?", id).First(&channel).Error)
	return channel.SubscriberCount
}

func TestToggle_MovesCounterWithMembership(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	channelID := seedChannel(t, db, node, node.Generate())

	resp, err := svc.Toggle(ctx, memberID, channelID)
	require.NoError(t, err)
	assert.True(t, resp.Subscribed)
	assert.Equal(t, int64(1), resp.SubscriberCount)
	assert.Equal(t, int64(1), subscriberCount(t, db, channelID))

	resp, err = svc.Toggle(ctx, memberID, channelID)
	require.NoError(t, err)
	assert.False(t, resp.Subscribed)
	assert.Equal(t, int64(0), resp.SubscriberCount)
	assert.Equal(t, int64(0), subscriberCount(t, db, channelID))
}

func TestToggle_TwoMembersCountIndependently(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	channelID := seedChannel(t, db, node, node.Generate())

	_, err := svc.Toggle(ctx, node.Generate(), channelID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, node.Generate(), channelID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), subscriberCount(t, db, channelID))
}

func TestToggle_OwnChannelRefused(t *testing.T) {
	svc, db, node := newTestService(t)
	ownerID := node.Generate()
	channelID := seedChannel(t, db, node, ownerID)

	_, err := svc.Toggle(context.Background(), ownerID, channelID)
	assert.ErrorIs(t, err, subscriptiondomain.ErrOwnChannel)
}

func TestToggle_UnknownChannel(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Toggle(context.Background(), node.Generate(), node.Generate())
	assert.ErrorIs(t, err, channeldomain.ErrChannelNotFound)
}

func TestList_ReturnsChannelNames(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := node.Generate()
	channelID := seedChannel(t, db, node, node.Generate())

	_, err := svc.Toggle(ctx, memberID, channelID)
	require.NoError(t, err)

	subs, err := svc.List(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, channelID.String(), subs[0].ChannelID)
}
