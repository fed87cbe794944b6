package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// CancelShift moves a shift to the cancelled terminal state. Safe to call at
// any point in the cascade: once cancelled, sweeper and response transitions
// on the shift are no-ops. Cancelling an already cancelled or completed shift
// changes nothing.
func CancelShift(ctx context.Context, store OfferStore, logger *zap.Logger, shiftID string) (*model.Shift, error) {
	var cancelled bool
	shift, err := store.UpdateShift(ctx, shiftID, func(s *model.Shift) error {
		cancelled = cascade.Cancel(s, time.Now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel shift %s: %w", shiftID, err)
	}

	if cancelled {
		logger.Info("Shift cancelled", zap.String("shift_id", shiftID))
	} else {
		logger.Info("Shift already terminal, cancel was a no-op",
			zap.String("shift_id", shiftID),
			zap.String("status", string(shift.Status)))
	}

	return shift, nil
}
