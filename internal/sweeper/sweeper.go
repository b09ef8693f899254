// Package sweeper implements the retention sweeper: a timer loop that purges
// closed accounts past their retention window and expires old activity-log
// entries. Each pass is independent; a failed pass is logged and retried on
// the next tick.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/atlasbank-portal/internal/config"
	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/activity"
)

// Sweeper purges expired rows on a fixed interval
type Sweeper struct {
	accounts          account.Repository
	activity          activity.Repository
	logger            *slog.Logger
	interval          time.Duration
	accountRetention  time.Duration
	activityRetention time.Duration
	now               func() time.Time
}

func NewSweeper(
	cfg *config.SweeperConfig,
	accounts account.Repository,
	activityRepo activity.Repository,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		accounts:          accounts,
		activity:          activityRepo,
		logger:            logger,
		interval:          cfg.Interval,
		accountRetention:  cfg.AccountRetention,
		activityRetention: cfg.ActivityRetention,
		now:               time.Now,
	}
}

// Start begins sweeping until context is canceled
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting Retention Sweeper",
		"interval", s.interval.String(),
		"account_retention", s.accountRetention.String(),
		"activity_retention", s.activityRetention.String(),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Retention Sweeper stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs both purge passes. Failures never stop the loop.
func (s *Sweeper) sweep(ctx context.Context) {
	now := s.now().UTC()

	purged, err := s.accounts.PurgeClosedBefore(ctx, now.Add(-s.accountRetention))
	if err != nil {
		s.logger.Error("Failed to purge closed accounts", "error", err)
	} else if purged > 0 {
		s.logger.Info("Purged closed accounts past retention", "count", purged)
	}

	deleted, err := s.activity.DeleteOlderThan(ctx, now.Add(-s.activityRetention))
	if err != nil {
		s.logger.Error("Failed to purge activity-log entries", "error", err)
	} else if deleted > 0 {
		s.logger.Info("Purged expired activity-log entries", "count", deleted)
	}
}
