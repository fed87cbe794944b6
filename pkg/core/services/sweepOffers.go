package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// SweepStore defines the database operations needed to sweep expired offers
type SweepStore interface {
	OfferStore

	// ListExpiredOffers returns the ids of shifts in the offered state whose
	// pending offer deadline is at or before now
	ListExpiredOffers(ctx context.Context, now time.Time) ([]string, error)
}

// SweepExpiredOffers advances every cascade whose current offer has timed
// out, applying the same transition an explicit decline would. Returns the
// number of shifts advanced.
//
// Each shift is re-checked inside the store's transactional update, so a
// response recorded between the scan and the update turns that shift's sweep
// into a no-op rather than a double resolution.
func SweepExpiredOffers(ctx context.Context, store SweepStore, notifier Notifier, logger *zap.Logger, opts EngineOptions) (int, error) {
	started := time.Now()

	ids, err := store.ListExpiredOffers(ctx, started)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired offers: %w", err)
	}

	logger.Debug("Sweeping expired offers", zap.Int("candidates", len(ids)))

	advanced := 0
	for _, id := range ids {
		var outcome cascade.Outcome
		shift, err := store.UpdateShift(ctx, id, func(s *model.Shift) error {
			outcome = cascade.ExpireOffer(s, time.Now(), opts.OfferWindow)
			return nil
		})
		if err != nil {
			logger.Error("Failed to sweep shift", zap.String("shift_id", id), zap.Error(err))
			continue
		}

		if outcome == cascade.OutcomeNoOp {
			continue
		}

		advanced++
		opts.Metrics.OfferExpired()
		logger.Info("Expired offer advanced",
			zap.String("shift_id", id),
			zap.String("status", string(shift.Status)))

		dispatchOutcome(ctx, notifier, logger, opts, shift, outcome)
	}

	opts.Metrics.ObserveSweep(time.Since(started))

	if advanced > 0 {
		logger.Info("Sweep pass complete",
			zap.Int("advanced", advanced),
			zap.Duration("took", time.Since(started)))
	}

	return advanced, nil
}
