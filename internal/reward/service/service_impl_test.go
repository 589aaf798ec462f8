package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gormRewardRepo swaps the raw FOR UPDATE SQL for gorm's query builder so the
// tests run on sqlite.
type gormRewardRepo struct{}

func (gormRewardRepo) Insert(ctx context.Context, db *gorm.DB, reward *rewarddomain.Reward) error {
	return db.WithContext(ctx).Create(reward).Error
}

func (gormRewardRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*rewarddomain.Reward, error) {
	var reward rewarddomain.Reward
	err := db.WithContext(ctx).Where("id = ?", id).First(&reward).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func (gormRewardRepo) FindBySource(ctx context.Context, db *gorm.DB, kind rewarddomain.SourceKind, sourceID snowflake.ID) ([]rewarddomain.Reward, error) {
	var rewards []rewarddomain.Reward
	err := db.WithContext(ctx).Where("source_kind = ? AND source_id = ?", kind, sourceID).Find(&rewards).Error
	return rewards, err
}

func (gormRewardRepo) FindByMemberID(ctx context.Context, db *gorm.DB, memberID snowflake.ID) ([]rewarddomain.Reward, error) {
	var rewards []rewarddomain.Reward
	err := db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at DESC").Find(&rewards).Error
	return rewards, err
}

func (gormRewardRepo) MarkCanceled(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Model(&rewarddomain.Reward{}).Where("id = ?", id).Update("canceled", true).Error
}

// gormLedger moves member balances through gorm instead of the locked raw SQL
// the production ledger uses.
type gormLedger struct{}

func (gormLedger) CreditTx(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return memberdomain.ErrInvalidAmount
	}
	var member memberdomain.Member
	if err := tx.WithContext(ctx).Where("id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return memberdomain.ErrMemberNotFound
		}
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
		if err == gorm.ErrRecordNotFound {
			return memberdomain.ErrMemberNotFound
		}
		return err
	}
	if member.Balance < amount {
		return memberdomain.ErrInsufficientBalance
	}
	return tx.WithContext(ctx).Model(&member).Update("balance", member.Balance-amount).Error
}

func newTestService(t *testing.T) (rewarddomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&memberdomain.Member{}, &rewarddomain.Reward{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewSystemClock(),
		Repo:   gormRewardRepo{},
		Ledger: gormLedger{},
		Policy: config.NewStaticRewardPolicyHolder(config.DefaultRewardPolicy()),
	})
	return svc, db, node
}

func seedMember(t *testing.T, db *gorm.DB, node *snowflake.Node, balance int64) snowflake.ID {
	t.Helper()
	member := memberdomain.Member{
		ID:        node.Generate(),
		Email:     uniqueEmail(node),
		Nickname:  "m",
		Grade:     memberdomain.GradeBronze,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&member).Error)
	return member.ID
}

func uniqueEmail(node *snowflake.Node) string {
	return node.Generate().String() + "@example.com"
}

func memberBalance(t *testing.T, db *gorm.DB, id snowflake.ID) int64 {
	t.Helper()
	var member memberdomain.Member
	require.NoError(t, db.Where("id = ?", id).First(&member).Error)
	return member.Balance
}

func TestPurchasePoints_FloorsByRate(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Equal(t, int64(9), svc.PurchasePoints(999))
	assert.Equal(t, int64(10), svc.PurchasePoints(1000))
	assert.Equal(t, int64(0), svc.PurchasePoints(50))
	assert.Equal(t, int64(0), svc.PurchasePoints(0))
}

func TestPoints_ReadHeldPolicy(t *testing.T) {
	svc := NewService(Params{
		Log:    zap.NewNop(),
		Repo:   gormRewardRepo{},
		Ledger: gormLedger{},
		Policy: config.NewStaticRewardPolicyHolder(config.RewardPolicy{
			PurchaseRateDenominator: 10,
			ReplyPoint:              7,
		}),
	})

	assert.Equal(t, int64(99), svc.PurchasePoints(999))
	assert.Equal(t, int64(7), svc.ReplyPoints())
}

func TestGrant_CreditsBalanceAndRecordsSource(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := seedMember(t, db, node, 0)
	videoID := node.Generate()

	reward, err := svc.Grant(ctx, memberID, rewarddomain.SourceVideo, videoID, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), memberBalance(t, db, memberID))
	assert.Equal(t, rewarddomain.SourceVideo, reward.SourceKind)
	assert.Equal(t, videoID, reward.SourceID)
	assert.False(t, reward.Canceled)
}

func TestGrant_RejectsUnknownSourceKind(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := seedMember(t, db, node, 0)

	_, err := svc.Grant(ctx, memberID, rewarddomain.SourceKind("coupon"), node.Generate(), 10)
	assert.ErrorIs(t, err, rewarddomain.ErrInvalidSource)

	_, err = svc.Grant(ctx, memberID, rewarddomain.SourceVideo, node.Generate(), 0)
	assert.ErrorIs(t, err, rewarddomain.ErrInvalidPoints)
}

func TestCancel_ReversesGrantExactlyOnce(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := seedMember(t, db, node, 0)

	reward, err := svc.Grant(ctx, memberID, rewarddomain.SourceReply, node.Generate(), 10)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, reward.ID))
	assert.Equal(t, int64(0), memberBalance(t, db, memberID))

	err = svc.Cancel(ctx, reward.ID)
	assert.ErrorIs(t, err, rewarddomain.ErrAlreadyCanceled)
	assert.Equal(t, int64(0), memberBalance(t, db, memberID))
}

func TestCancel_FailsWhenPointsAlreadySpent(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	memberID := seedMember(t, db, node, 0)

	reward, err := svc.Grant(ctx, memberID, rewarddomain.SourceVideo, node.Generate(), 10)
	require.NoError(t, err)

	// Spend the points before the cancel arrives.
	require.NoError(t, db.Model(&memberdomain.Member{}).Where("id = ?", memberID).Update("balance", 3).Error)

	err = svc.Cancel(ctx, reward.ID)
	assert.ErrorIs(t, err, memberdomain.ErrInsufficientBalance)

	// The reward row must stay grantable for a later retry.
	var stored rewarddomain.Reward
	require.NoError(t, db.Where("id = ?", reward.ID).First(&stored).Error)
	assert.False(t, stored.Canceled)
}
