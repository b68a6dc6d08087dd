package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultSchedule = "0 * * * *" // hourly, on the hour

// ActivationPurger deletes activation tickets issued before the cutoff
// and reports how many went away.
type ActivationPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper owns the recurring purge of aged password-reset tickets. It is
// started and stopped explicitly by the service lifecycle; each firing
// deletes every ticket older than the retention window, redeemed or not.
type Sweeper struct {
	purger    ActivationPurger
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	now       func() time.Time
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used to compute the cutoff.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func New(purger ActivationPurger, retention time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		purger:    purger,
		retention: retention,
		schedule:  defaultSchedule,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the purge job and launches the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			slog.Warn("activation sweep failed", "err", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs a single sweep. Also used during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.purger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return n, err
	}
	if n > 0 {
		slog.Info("swept expired activations", "deleted", n)
	}
	return n, nil
}
