// Package scheduler runs periodic maintenance jobs with gocron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/api/metrics"
)

const (
	defaultInterval = time.Hour
	jobTimeout      = time.Minute

	JobPurgeResetTokens = "purge-expired-reset-tokens"
)

// ResetTokenPurger clears password reset tokens that have expired.
type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	cron   gocron.Scheduler
	purger ResetTokenPurger
	now    func() time.Time
	log    zerolog.Logger
}

// New registers every maintenance job to run each interval. Jobs do not run
// until Start is called.
func New(purger ResetTokenPurger, interval time.Duration, log zerolog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		interval = defaultInterval
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{cron: cron, purger: purger, now: time.Now, log: log}
	_, err = cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.purgeResetTokens),
		gocron.WithName(JobPurgeResetTokens),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("register %s: %w", JobPurgeResetTokens, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Jobs())).Msg("scheduler started")
}

// Shutdown stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.purger.PurgeExpiredResetTokens(ctx, s.now().UTC())
	if err != nil {
		s.log.Error().Err(err).Str("job", JobPurgeResetTokens).Msg("maintenance job failed")
		return
	}
	metrics.ResetTokensPurgedTotal.Add(float64(n))
	if n > 0 {
		s.log.Info().Int64("purged", n).Str("job", JobPurgeResetTokens).Msg("expired reset tokens cleared")
	}
}
