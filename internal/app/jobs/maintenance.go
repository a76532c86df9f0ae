// Package jobs schedules periodic maintenance of expiring server state.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultSchedule runs maintenance at the top of every hour.
	DefaultSchedule = "@hourly"

	runTimeout       = time.Minute
	limiterIdleAfter = 10 * time.Minute
)

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ResetCleaner clears expired password reset tokens.
type ResetCleaner interface {
	ClearExpiredResets(ctx context.Context) (int64, error)
}

// Sweeper drops idle per-client state.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// Maintenance groups the cleanup tasks run on every tick.
type Maintenance struct {
	Sessions SessionPurger
	Resets   ResetCleaner
	Limiters []Sweeper
}

// Run executes every task once. A failing task is logged and does not stop the others.
func (m *Maintenance) Run(ctx context.Context) {
	if m.Sessions != nil {
		if _, err := m.Sessions.PurgeExpired(ctx); err != nil {
			slog.Error("failed to purge expired sessions", "error", err)
		}
	}
	if m.Resets != nil {
		n, err := m.Resets.ClearExpiredResets(ctx)
		if err != nil {
			slog.Error("failed to clear expired reset tokens", "error", err)
		} else if n > 0 {
			slog.Info("expired reset tokens cleared", "count", n)
		}
	}
	swept := 0
	for _, l := range m.Limiters {
		swept += l.Sweep(limiterIdleAfter)
	}
	if swept > 0 {
		slog.Debug("idle rate limiter entries dropped", "count", swept)
	}
}

// NewScheduler returns a cron scheduler running m on schedule. The caller starts and stops it.
func NewScheduler(schedule string, m *Maintenance) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		m.Run(ctx)
	}); err != nil {
		return nil, err
	}
	return c, nil
}
