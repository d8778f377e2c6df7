package worker

import (
	"context"
	"time"

	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

// RetentionStore is the sweep surface of the job store.
type RetentionStore interface {
	DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionSweeper periodically deletes terminal jobs older than the
// configured retention window, keeping the job store bounded.
type RetentionSweeper struct {
	storage   RetentionStore
	retention time.Duration
	interval  time.Duration
}

func NewRetentionSweeper(storage RetentionStore, retention time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		storage:   storage,
		retention: retention,
		interval:  time.Hour,
	}
}

// Run blocks sweeping until ctx is cancelled. A sweep runs immediately on
// start, then once per interval.
func (s *RetentionSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.storage.DeleteTerminalJobsBefore(ctx, cutoff)
	if err != nil {
		logger.Error("Retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Info("Retention sweep removed expired jobs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
