// Package sweeper runs the periodic expired-offer sweep.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/services"
)

// Sweeper periodically advances cascades whose current offer has timed out.
// It is stateless between passes; all state lives in the store.
type Sweeper struct {
	store    services.SweepStore
	notifier services.Notifier
	logger   *zap.Logger
	opts     services.EngineOptions
	interval time.Duration
}

// New creates a sweeper that runs a pass every interval
func New(store services.SweepStore, notifier services.Notifier, logger *zap.Logger, opts services.EngineOptions, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		interval: interval,
	}
}

// Run sweeps on a ticker until the context is cancelled. A failed pass is
// logged and the loop keeps going; the next tick retries from scratch.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return

		case <-ticker.C:
			if _, err := services.SweepExpiredOffers(ctx, s.store, s.notifier, s.logger, s.opts); err != nil {
				s.logger.Error("Sweep pass failed", zap.Error(err))
			}
		}
	}
}
