package services

import (
	"context"
	"fmt"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// ListShiftsStore defines the database operations needed to list shifts
type ListShiftsStore interface {
	ListShiftsBetween(ctx context.Context, fromDate, toDate string) ([]model.Shift, error)
}

// ListShifts returns shifts with dates in [fromDate, toDate], ordered by the
// store (date, then start time)
func ListShifts(ctx context.Context, store ListShiftsStore, fromDate, toDate string) ([]model.Shift, error) {
	shifts, err := store.ListShiftsBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}
