// Package activitylog writes activity-log entries in the background. Writes
// happen outside the financial transaction and are best-effort: a failed or
// dropped entry is logged and forgotten, never surfaced to the caller.
package activitylog

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/atlasbank-portal/internal/domain/activity"
)

// Sink accepts activity entries for background persistence
type Sink interface {
	Record(entry *activity.Entry)
}

// Recorder accepts activity entries and persists them from a worker pool
type Recorder struct {
	pool         *ants.Pool
	repo         activity.Repository
	logger       *slog.Logger
	writeTimeout time.Duration
}

var _ Sink = (*Recorder)(nil)

// NewRecorder creates a recorder backed by a worker pool of the given size
func NewRecorder(size int, writeTimeout time.Duration, repo activity.Repository, logger *slog.Logger) (*Recorder, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Recorder{
		pool:         pool,
		repo:         repo,
		logger:       logger,
		writeTimeout: writeTimeout,
	}, nil
}

// Record submits an entry for background persistence. It never blocks the
// caller: if the pool is saturated the entry is dropped with a warning.
func (r *Recorder) Record(entry *activity.Entry) {
	err := r.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		if err := r.repo.Create(ctx, entry); err != nil {
			r.logger.Warn("Failed to write activity-log entry",
				"kind", entry.Kind,
				"operator_id", entry.OperatorID,
				"error", err,
			)
		}
	})
	if err != nil {
		r.logger.Warn("Dropped activity-log entry, worker pool unavailable",
			"kind", entry.Kind,
			"operator_id", entry.OperatorID,
			"error", err,
		)
	}
}

// Close releases the worker pool
func (r *Recorder) Close() {
	r.pool.Release()
}
