package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// CreateShiftStore defines the database operations needed to create a shift
type CreateShiftStore interface {
	GetElder(ctx context.Context, id string) (*model.Elder, error)
	ListActiveCaregivers(ctx context.Context) ([]model.Caregiver, error)
	QueryOverlappingShifts(ctx context.Context, caregiverID, date string, startMinute, endMinute int) ([]model.Shift, error)
	CountCompletedShifts(ctx context.Context, caregiverID, elderID string) (int, error)
	CountWeeklyScheduledShifts(ctx context.Context, caregiverID, weekStart, weekEnd string) (int, error)
	InsertShift(ctx context.Context, shift *model.Shift) error
}

// CreateShift validates the input and creates a shift, either direct-assigned
// or cascade-started per the assignment mode. Creation is all-or-nothing:
// validation failures return before anything is persisted.
//
// For cascade shifts, ranking and conflict filtering run exactly once here.
// If every candidate is conflicted (or the pool is empty) the shift is still
// created, in the unfilled terminal state, and the owner is alerted.
func CreateShift(ctx context.Context, store CreateShiftStore, notifier Notifier, logger *zap.Logger, opts EngineOptions, input cascade.ShiftInput) (*model.Shift, error) {
	now := time.Now()

	if err := cascade.ValidateShiftInput(input, opts.MinShiftDuration, now, opts.Location); err != nil {
		return nil, err
	}

	elder, err := store.GetElder(ctx, input.ElderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elder %s: %w", input.ElderID, err)
	}

	shift := &model.Shift{
		ID:                   uuid.New().String(),
		ElderID:              elder.ID,
		Date:                 input.Date,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
		AssignmentMode:       input.AssignmentMode,
		PreferredCaregiverID: input.PreferredCaregiverID,
		CreatedBy:            input.CreatedBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	start, end, err := shift.Window()
	if err != nil {
		return nil, err
	}

	logger.Info("Creating shift",
		zap.String("shift_id", shift.ID),
		zap.String("elder_id", elder.ID),
		zap.String("date", shift.Date),
		zap.String("mode", string(shift.AssignmentMode)))

	if input.AssignmentMode == model.ModeDirect {
		return createDirectShift(ctx, store, logger, shift, input.CaregiverID, start, end)
	}

	return createCascadeShift(ctx, store, notifier, logger, opts, shift, elder, start, end, now)
}

// createDirectShift schedules the named caregiver immediately. The conflict
// filter acts as a hard creation-time check: any overlap, or any inability to
// evaluate the overlap query, fails the creation.
func createDirectShift(ctx context.Context, store CreateShiftStore, logger *zap.Logger, shift *model.Shift, caregiverID string, start, end int) (*model.Shift, error) {
	if cascade.HasConflict(ctx, store, logger, caregiverID, shift.Date, start, end) {
		return nil, fmt.Errorf("caregiver %s has a conflicting shift on %s", caregiverID, shift.Date)
	}

	shift.CaregiverID = caregiverID
	shift.Status = model.StatusScheduled

	if err := store.InsertShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}

	logger.Info("Direct-assign shift scheduled",
		zap.String("shift_id", shift.ID),
		zap.String("caregiver_id", caregiverID))

	return shift, nil
}

// createCascadeShift ranks the candidate pool, filters conflicts, and starts
// the cascade offer sequence
func createCascadeShift(ctx context.Context, store CreateShiftStore, notifier Notifier, logger *zap.Logger, opts EngineOptions, shift *model.Shift, elder *model.Elder, start, end int, now time.Time) (*model.Shift, error) {
	pool, err := store.ListActiveCaregivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caregiver pool: %w", err)
	}

	counts := fetchCounts(ctx, store, logger, pool, elder.ID, shift.Date, opts.Location)

	scored := cascade.ScoreCandidates(elder, pool, counts, shift.PreferredCaregiverID)
	eligible := cascade.FilterConflicts(ctx, store, logger, scored, shift.Date, start, end)
	ranked := cascade.RankCandidates(eligible)

	logger.Info("Cascade candidates ranked",
		zap.String("shift_id", shift.ID),
		zap.Int("pool_size", len(pool)),
		zap.Int("eligible", len(ranked)))

	outcome := cascade.StartCascade(shift, ranked, now, opts.OfferWindow)

	if err := store.InsertShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}

	dispatchOutcome(ctx, notifier, logger, opts, shift, outcome)

	return shift, nil
}

// fetchCounts queries the per-caregiver scoring counts fresh for this
// cascade. A failed count query scores as zero for that term rather than
// failing creation; the error is logged.
func fetchCounts(ctx context.Context, store CreateShiftStore, logger *zap.Logger, pool []model.Caregiver, elderID, date string, loc *time.Location) map[string]cascade.CaregiverCounts {
	counts := make(map[string]cascade.CaregiverCounts, len(pool))

	day, err := model.DateIn(date, loc)
	if err != nil {
		// Validation has already parsed the date; this cannot normally happen
		logger.Error("Failed to parse shift date for workload window", zap.String("date", date), zap.Error(err))
		return counts
	}
	weekStart, weekEnd := model.WeekOf(day)

	for _, cg := range pool {
		var c cascade.CaregiverCounts

		completed, err := store.CountCompletedShifts(ctx, cg.ID, elderID)
		if err != nil {
			logger.Warn("Failed to count completed shifts, scoring continuity as zero",
				zap.String("caregiver_id", cg.ID), zap.Error(err))
		} else {
			c.CompletedShiftsForElder = completed
		}

		weekly, err := store.CountWeeklyScheduledShifts(ctx, cg.ID,
			weekStart.Format(model.DateLayout), weekEnd.Format(model.DateLayout))
		if err != nil {
			logger.Warn("Failed to count weekly shifts, scoring workload as unloaded",
				zap.String("caregiver_id", cg.ID), zap.Error(err))
		} else {
			c.WeeklyScheduledShifts = weekly
		}

		counts[cg.ID] = c
	}

	return counts
}

// dispatchOutcome sends the notification matching a cascade transition and
// records metrics. Dispatch failures are logged, never surfaced: the
// transition has already been persisted.
func dispatchOutcome(ctx context.Context, notifier Notifier, logger *zap.Logger, opts EngineOptions, shift *model.Shift, outcome cascade.Outcome) {
	switch outcome {
	case cascade.OutcomeOffered:
		opts.Metrics.OfferDispatched()
		if err := notifier.SendOfferNotification(ctx, shift.CaregiverID, shift); err != nil {
			logger.Error("Failed to dispatch offer notification",
				zap.String("shift_id", shift.ID),
				zap.String("caregiver_id", shift.CaregiverID),
				zap.Error(err))
		}
	case cascade.OutcomeUnfilled:
		opts.Metrics.ShiftUnfilled()
		logger.Warn("Shift unfilled, alerting owner",
			zap.String("shift_id", shift.ID),
			zap.String("owner_id", shift.CreatedBy))
		if err := notifier.SendUnfilledAlert(ctx, shift.CreatedBy, shift); err != nil {
			logger.Error("Failed to dispatch unfilled alert",
				zap.String("shift_id", shift.ID),
				zap.Error(err))
		}
	}
}
