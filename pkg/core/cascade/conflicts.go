package cascade

import (
	"context"

	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// OverlapQuerier looks up a caregiver's active shifts overlapping a window
// on a calendar date. Active means any status except cancelled; the query is
// expected to filter out cancelled shifts itself.
type OverlapQuerier interface {
	QueryOverlappingShifts(ctx context.Context, caregiverID, date string, startMinute, endMinute int) ([]model.Shift, error)
}

// FilterConflicts removes every candidate with an active shift overlapping
// the proposed [startMinute, endMinute) window on the given date.
//
// The check fails closed: if the overlap query cannot be evaluated, the
// candidate is treated as conflicted and excluded. Admitting a candidate on a
// query error would silently defeat the conflict-avoidance guarantee.
func FilterConflicts(ctx context.Context, q OverlapQuerier, logger *zap.Logger, candidates []model.Candidate, date string, startMinute, endMinute int) []model.Candidate {
	eligible := make([]model.Candidate, 0, len(candidates))

	for _, cand := range candidates {
		overlapping, err := q.QueryOverlappingShifts(ctx, cand.CaregiverID, date, startMinute, endMinute)
		if err != nil {
			logger.Warn("Conflict query failed, excluding candidate",
				zap.String("caregiver_id", cand.CaregiverID),
				zap.String("date", date),
				zap.Error(err))
			continue
		}

		if len(overlapping) > 0 {
			logger.Debug("Candidate has overlapping shift, excluding",
				zap.String("caregiver_id", cand.CaregiverID),
				zap.String("date", date),
				zap.Int("overlap_count", len(overlapping)))
			continue
		}

		eligible = append(eligible, cand)
	}

	return eligible
}

// HasConflict reports whether a single caregiver has any active shift
// overlapping the window. Used as a hard creation-time check for
// direct-assign shifts. Query errors count as a conflict (fail closed).
func HasConflict(ctx context.Context, q OverlapQuerier, logger *zap.Logger, caregiverID, date string, startMinute, endMinute int) bool {
	overlapping, err := q.QueryOverlappingShifts(ctx, caregiverID, date, startMinute, endMinute)
	if err != nil {
		logger.Warn("Conflict query failed, treating as conflicted",
			zap.String("caregiver_id", caregiverID),
			zap.String("date", date),
			zap.Error(err))
		return true
	}
	return len(overlapping) > 0
}
