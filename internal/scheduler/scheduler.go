// Package scheduler runs the periodic subscriber counter reconciliation.
// The counter is kept consistent inside the toggle transaction; this job
// repairs whatever manual intervention or partial restores broke.
package scheduler

import (
	"context"
	"errors"
	"time"

	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/lock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const reconcileLockKey = "scheduler:reconcile:subscribers"

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	ChannelSvc channeldomain.Service
	Clock      clock.Clock
	Locker     *lock.Locker `optional:"true"`
	Config     Config       `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	channelSvc channeldomain.Service
	locker     *lock.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.ChannelSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		channelSvc: p.ChannelSvc,
		locker:     p.Locker,
	}, nil
}

// RunOnce executes a single reconciliation pass. Only one replica holds the
// lock at a time; the others skip the round.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	token, acquired, err := s.locker.TryLock(ctx, reconcileLockKey, s.cfg.LockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := s.locker.Release(ctx, reconcileLockKey, token); err != nil {
			s.log.Warn("failed to release reconcile lock", zap.Error(err))
		}
	}()

	start := s.clock.Now()
	repaired, err := s.channelSvc.Reconcile(ctx)
	if err != nil {
		return err
	}
	if repaired > 0 {
		s.log.Info("reconciled subscriber counters",
			zap.Int64("channels", repaired),
			zap.Duration("took", s.clock.Now().Sub(start)),
		)
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
