// Package jobs runs the server's periodic maintenance sweeps.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobExpireMemberships = "expire_memberships"
	JobCleanupSessions   = "cleanup_sessions"
)

// runTimeout bounds a single sweep
const runTimeout = 5 * time.Minute

// MembershipExpirer deletes memberships past their expiration date
type MembershipExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// SessionCleaner deletes sessions past their expiry
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Recorder receives one call per job run
type Recorder interface {
	JobRun(job string, processed int, err error)
}

// Scheduler wraps a cron scheduler running the maintenance sweeps
type Scheduler struct {
	cron     *cron.Cron
	expirer  MembershipExpirer
	sessions SessionCleaner
	metrics  Recorder
	logger   *zap.Logger
}

// NewScheduler registers the sweeps on schedule. Both jobs share the schedule.
func NewScheduler(schedule string, expirer MembershipExpirer, sessions SessionCleaner, metrics Recorder, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		expirer:  expirer,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunExpireMemberships(context.Background()) }); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", JobExpireMemberships, err)
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunCleanupSessions(context.Background()) }); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", JobCleanupSessions, err)
	}

	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.logger.Info("job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("stopping job scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("job scheduler stop timed out")
	}
}

// RunExpireMemberships deletes expired memberships once
func (s *Scheduler) RunExpireMemberships(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := s.expirer.ExpireDue(ctx)
	s.finish(JobExpireMemberships, n, err)
}

// RunCleanupSessions deletes expired sessions once
func (s *Scheduler) RunCleanupSessions(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := s.sessions.CleanupExpiredSessions(ctx)
	s.finish(JobCleanupSessions, int(n), err)
}

func (s *Scheduler) finish(job string, processed int, err error) {
	s.metrics.JobRun(job, processed, err)
	if err != nil {
		s.logger.Error("job failed", zap.String("job", job), zap.Error(err))
		return
	}
	s.logger.Debug("job completed", zap.String("job", job), zap.Int("processed", processed))
}
