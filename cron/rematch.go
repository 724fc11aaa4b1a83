package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Rematcher is the part of the booking service the sweep drives.
type Rematcher interface {
	RematchPending(ctx context.Context, limit int) (int, error)
}

// NewRematchSweep schedules a periodic re-match of bookings left unassigned.
// The caller starts and stops the returned scheduler.
func NewRematchSweep(spec string, batch int, svc Rematcher, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { runRematch(svc, batch, logger) }); err != nil {
		return nil, err
	}
	return c, nil
}

func runRematch(svc Rematcher, batch int, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	assigned, err := svc.RematchPending(ctx, batch)
	if err != nil {
		logger.Error("Re-match sweep failed", zap.Int("assigned", assigned), zap.Error(err))
		return
	}
	if assigned > 0 {
		logger.Info("Re-match sweep assigned bookings",
			zap.Int("assigned", assigned),
			zap.Duration("took", time.Since(start)))
	}
}
