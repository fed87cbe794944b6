package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// RespondToOffer applies a caregiver's accept or decline to a pending offer.
//
// The call is idempotent: if the offer is already resolved, the caregiver
// does not match the pending offer, or the shift has left the offered state
// (cancelled, swept, accepted elsewhere), the shift is returned unchanged.
// Races with the sweeper resolve exactly once because the transition runs
// inside the store's transactional read-modify-write.
func RespondToOffer(ctx context.Context, store OfferStore, notifier Notifier, logger *zap.Logger, opts EngineOptions, shiftID, caregiverID string, decision cascade.Decision) (*model.Shift, error) {
	if decision != cascade.DecisionAccept && decision != cascade.DecisionDecline {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	logger.Info("Processing offer response",
		zap.String("shift_id", shiftID),
		zap.String("caregiver_id", caregiverID),
		zap.String("decision", string(decision)))

	var outcome cascade.Outcome
	shift, err := store.UpdateShift(ctx, shiftID, func(s *model.Shift) error {
		outcome = cascade.ResolveOffer(s, caregiverID, decision, time.Now(), opts.OfferWindow)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update shift %s: %w", shiftID, err)
	}

	switch outcome {
	case cascade.OutcomeNoOp:
		logger.Info("Offer response was a no-op",
			zap.String("shift_id", shiftID),
			zap.String("status", string(shift.Status)))
	case cascade.OutcomeScheduled:
		opts.Metrics.OfferAccepted()
		logger.Info("Offer accepted, shift scheduled",
			zap.String("shift_id", shiftID),
			zap.String("caregiver_id", caregiverID))
	case cascade.OutcomeOffered:
		opts.Metrics.OfferDeclined()
		logger.Info("Offer declined, cascading to next candidate",
			zap.String("shift_id", shiftID),
			zap.String("next_caregiver_id", shift.CaregiverID))
	case cascade.OutcomeUnfilled:
		opts.Metrics.OfferDeclined()
		logger.Info("Offer declined, candidates exhausted",
			zap.String("shift_id", shiftID))
	}

	dispatchOutcome(ctx, notifier, logger, opts, shift, outcome)

	return shift, nil
}
