package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/cascade"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// maxRecurrenceOccurrences caps how many shifts one recurrence rule may
// create in a single call
const maxRecurrenceOccurrences = 52

// RecurringShiftResult reports the per-date outcome of a recurring creation
type RecurringShiftResult struct {
	Created []*model.Shift

	// Failed maps a date to the error that prevented its shift's creation.
	// A failure on one date does not stop the remaining dates.
	Failed map[string]error
}

// ExpandRecurrence evaluates an RRULE string against the input's date,
// returning the occurrence dates the rule produces. An unbounded rule is
// truncated at maxRecurrenceOccurrences.
func ExpandRecurrence(rruleStr, startDate string, loc *time.Location) ([]string, error) {
	day, err := model.DateIn(startDate, loc)
	if err != nil {
		return nil, err
	}

	opts, err := rrule.StrToROption(rruleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rruleStr, err)
	}
	opts.Dtstart = day

	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rruleStr, err)
	}

	// Collect through the iterator so an unbounded rule cannot spin forever
	var occurrences []time.Time
	next := rule.Iterator()
	for {
		occ, ok := next()
		if !ok || len(occurrences) == maxRecurrenceOccurrences {
			break
		}
		occurrences = append(occurrences, occ)
	}
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("recurrence rule %q produces no occurrences", rruleStr)
	}

	dates := make([]string, len(occurrences))
	for i, occ := range occurrences {
		dates[i] = occ.In(loc).Format(model.DateLayout)
	}
	return dates, nil
}

// CreateRecurringShifts expands the recurrence rule and creates one shift per
// occurrence date. Each occurrence runs the full validator and, for cascade
// shifts, its own independent ranking and offer sequence.
func CreateRecurringShifts(ctx context.Context, store CreateShiftStore, notifier Notifier, logger *zap.Logger, opts EngineOptions, input cascade.ShiftInput, rruleStr string) (*RecurringShiftResult, error) {
	dates, err := ExpandRecurrence(rruleStr, input.Date, opts.Location)
	if err != nil {
		return nil, err
	}

	logger.Info("Creating recurring shifts",
		zap.String("rrule", rruleStr),
		zap.Int("occurrences", len(dates)))

	result := &RecurringShiftResult{Failed: map[string]error{}}
	for _, date := range dates {
		occurrence := input
		occurrence.Date = date

		shift, err := CreateShift(ctx, store, notifier, logger, opts, occurrence)
		if err != nil {
			logger.Warn("Failed to create recurring occurrence",
				zap.String("date", date), zap.Error(err))
			result.Failed[date] = err
			continue
		}
		result.Created = append(result.Created, shift)
	}

	return result, nil
}
