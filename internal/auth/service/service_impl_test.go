package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/coursehive/coursehive/internal/auth/domain"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memStore is an in-memory Store with TTL semantics.
type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]memEntry{}}
}

func (s *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", authdomain.ErrKeyNotFound
	}
	return entry.value, nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// memberBackend doubles as member service and repository over a shared map.
type memberBackend struct {
	node    *snowflake.Node
	mu      sync.Mutex
	byEmail map[string]*memberdomain.Member
}

func newMemberBackend(node *snowflake.Node) *memberBackend {
	return &memberBackend{node: node, byEmail: map[string]*memberdomain.Member{}}
}

func (b *memberBackend) Register(_ context.Context, req memberdomain.RegisterRequest) (memberdomain.ProfileResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.byEmail[req.Email]; ok {
		return memberdomain.ProfileResponse{}, memberdomain.ErrMemberExists
	}
	member := &memberdomain.Member{
		ID:           b.node.Generate(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Nickname:     req.Nickname,
		Grade:        memberdomain.GradeBronze,
	}
	b.byEmail[req.Email] = member
	return memberdomain.ProfileResponse{ID: member.ID.String(), Email: member.Email}, nil
}

func (b *memberBackend) GetProfile(context.Context, snowflake.ID) (memberdomain.ProfileResponse, error) {
	return memberdomain.ProfileResponse{}, nil
}
func (b *memberBackend) UpdateProfile(context.Context, snowflake.ID, memberdomain.UpdateProfileRequest) error {
	return nil
}
func (b *memberBackend) Credit(context.Context, snowflake.ID, int64) error          { return nil }
func (b *memberBackend) Debit(context.Context, snowflake.ID, int64) error           { return nil }
func (b *memberBackend) CheckSufficient(context.Context, snowflake.ID, int64) error { return nil }

// memberRepoStub exposes the backend map through the repository contract.
type memberRepoStub struct {
	backend *memberBackend
}

func (r memberRepoStub) Insert(context.Context, *gorm.DB, *memberdomain.Member) error { return nil }
func (r memberRepoStub) FindByID(context.Context, *gorm.DB, snowflake.ID) (*memberdomain.Member, error) {
	return nil, nil
}
func (r memberRepoStub) FindByIDForUpdate(context.Context, *gorm.DB, snowflake.ID) (*memberdomain.Member, error) {
	return nil, nil
}
func (r memberRepoStub) FindByEmail(_ context.Context, _ *gorm.DB, email string) (*memberdomain.Member, error) {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	return r.backend.byEmail[email], nil
}
func (r memberRepoStub) UpdateBalance(context.Context, *gorm.DB, snowflake.ID, int64) error {
	return nil
}
func (r memberRepoStub) UpdateProfile(context.Context, *gorm.DB, snowflake.ID, string, *string) error {
	return nil
}

// channelSvcStub records channel creations.
type channelSvcStub struct {
	mu      sync.Mutex
	created []string
}

func (s *channelSvcStub) CreateTx(_ context.Context, _ *gorm.DB, memberID snowflake.ID, name string) (*channeldomain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, name)
	return &channeldomain.Channel{MemberID: memberID, Name: name}, nil
}
func (s *channelSvcStub) Get(context.Context, snowflake.ID) (channeldomain.ChannelResponse, error) {
	return channeldomain.ChannelResponse{}, nil
}
func (s *channelSvcStub) GetByMember(context.Context, snowflake.ID) (channeldomain.ChannelResponse, error) {
	return channeldomain.ChannelResponse{}, nil
}
func (s *channelSvcStub) Update(context.Context, snowflake.ID, channeldomain.UpdateChannelRequest) error {
	return nil
}
func (s *channelSvcStub) Reconcile(context.Context) (int64, error) { return 0, nil }

type fixture struct {
	svc      authdomain.Service
	store    *memStore
	channels *channelSvcStub
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := newMemStore()
	backend := newMemberBackend(node)
	channels := &channelSvcStub{}

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewSystemClock(),
		Config: config.Config{
			SessionTTLMinutes:      60,
			VerificationTTLMinutes: 10,
		},
		Store:      store,
		MemberSvc:  backend,
		MemberRepo: memberRepoStub{backend: backend},
		ChannelSvc: channels,
	})
	return fixture{svc: svc, store: store, channels: channels}
}

func (f fixture) verify(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.RequestVerification(ctx, email))
	code, err := f.store.Get(ctx, fmt.Sprintf("verify:code:%s", strings.ToLower(email)))
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, email, code))
}

func TestSignup_RequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "new@example.com",
		Password: "long-enough-password",
		Nickname: "new",
	})
	assert.ErrorIs(t, err, authdomain.ErrEmailNotVerified)
}

func TestSignup_CreatesChannelAndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verify(t, "creator@example.com")

	session, err := f.svc.Signup(ctx, authdomain.SignupRequest{
		Email:       "creator@example.com",
		Password:    "long-enough-password",
		Nickname:    "creator",
		ChannelName: "creator's channel",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	assert.Equal(t, []string{"creator's channel"}, f.channels.created)

	memberID, err := f.svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.MemberID, memberID.String())
}

func TestSignup_RejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	f.verify(t, "short@example.com")

	_, err := f.svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "short@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestVerification(ctx, "who@example.com"))

	err := f.svc.VerifyEmail(ctx, "who@example.com", "000000x")
	assert.ErrorIs(t, err, authdomain.ErrInvalidCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verify(t, "login@example.com")

	_, err := f.svc.Signup(ctx, authdomain.SignupRequest{
		Email:    "login@example.com",
		Password: "long-enough-password",
		Nickname: "login",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, authdomain.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password-here",
	})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	session, err := f.svc.Login(ctx, authdomain.LoginRequest{
		Email:    "login@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verify(t, "bye@example.com")

	session, err := f.svc.Signup(ctx, authdomain.SignupRequest{
		Email:    "bye@example.com",
		Password: "long-enough-password",
		Nickname: "bye",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.Token))

	_, err = f.svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
}
