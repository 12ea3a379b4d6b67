package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes history rows finished before the cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Retention periodically drops local game-session history older than a fixed age.
type Retention struct {
	store     Pruner
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewRetention(store Pruner, retention time.Duration, logger *zap.Logger) *Retention {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retention{store: store, retention: retention, logger: logger, now: time.Now}
}

// RunOnce prunes immediately and reports how many rows were removed.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	if r.retention <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().Add(-r.retention)
	removed, err := r.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	r.logger.Info("history pruned", zap.Time("cutoff", cutoff), zap.Int64("removed", removed))
	return removed, nil
}

// Start schedules RunOnce with a cron spec and stops the scheduler when ctx is done.
func (r *Retention) Start(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("history retention failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention %q: %w", spec, err)
	}

	c.Start()
	r.logger.Info("history retention scheduled", zap.String("schedule", spec), zap.Duration("retention", r.retention))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		r.logger.Info("history retention stopped")
	}()
	return nil
}
