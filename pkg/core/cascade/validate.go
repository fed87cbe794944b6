package cascade

import (
	"fmt"
	"time"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// ShiftInput is the caller-supplied data for creating a shift
type ShiftInput struct {
	ElderID        string
	Date           string
	StartTime      string
	EndTime        string
	AssignmentMode model.AssignmentMode

	// CaregiverID is required for direct-assign shifts
	CaregiverID string

	// PreferredCaregiverID optionally boosts a candidate's ranking (cascade only)
	PreferredCaregiverID string

	CreatedBy string
}

// ValidateShiftInput runs the creation-time guards in order, short-circuiting
// on the first failure. Past-dated shifts are rejected.
func ValidateShiftInput(in ShiftInput, minDuration time.Duration, now time.Time, loc *time.Location) error {
	if in.ElderID == "" {
		return fmt.Errorf("elder is required")
	}
	if in.Date == "" {
		return fmt.Errorf("date is required")
	}
	if in.StartTime == "" || in.EndTime == "" {
		return fmt.Errorf("start and end times are required")
	}

	start, err := model.ParseMinuteOfDay(in.StartTime)
	if err != nil {
		return err
	}
	end, err := model.ParseMinuteOfDay(in.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s", in.EndTime, in.StartTime)
	}

	if time.Duration(end-start)*time.Minute < minDuration {
		return fmt.Errorf("shift duration must be at least %s", minDuration)
	}

	day, err := model.DateIn(in.Date, loc)
	if err != nil {
		return err
	}
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return fmt.Errorf("shift date %s is in the past", in.Date)
	}

	switch in.AssignmentMode {
	case model.ModeDirect:
		if in.CaregiverID == "" {
			return fmt.Errorf("caregiver is required for direct-assign shifts")
		}
	case model.ModeCascade:
		// Caregiver is optional; absence triggers auto-ranking
	default:
		return fmt.Errorf("unknown assignment mode %q", in.AssignmentMode)
	}

	return nil
}
