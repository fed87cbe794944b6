package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

const shiftColumns = `id, elder_id, caregiver_id, shift_date, start_minute, end_minute,
	assignment_mode, status, preferred_caregiver_id, created_by, created_at, updated_at, cascade_state`

// InsertShift persists a newly created shift
func (db *DB) InsertShift(ctx context.Context, shift *model.Shift) error {
	cascadeJSON, err := marshalCascade(shift.Cascade)
	if err != nil {
		return err
	}

	start, end, err := shift.Window()
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx, `
		INSERT INTO shift (id, elder_id, caregiver_id, shift_date, start_minute, end_minute,
			assignment_mode, status, preferred_caregiver_id, created_by, created_at, updated_at,
			cascade_state, offer_expires_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		shift.ID,
		shift.ElderID,
		nullable(shift.CaregiverID),
		shift.Date,
		start,
		end,
		string(shift.AssignmentMode),
		string(shift.Status),
		nullable(shift.PreferredCaregiverID),
		shift.CreatedBy,
		shift.CreatedAt,
		shift.UpdatedAt,
		cascadeJSON,
		offerExpiry(shift),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// GetShift retrieves a shift by id
func (db *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift WHERE id = $1`, id)
	shift, err := scanShift(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift %s: %w", id, err)
	}
	return shift, nil
}

// UpdateShift applies mutate to the shift inside a transaction, holding a row
// lock for the duration. This serializes concurrent resolutions on the same
// shift: whichever transaction commits first wins, and the loser's mutate
// re-reads the already-resolved state and no-ops.
func (db *DB) UpdateShift(ctx context.Context, id string, mutate func(*model.Shift) error) (*model.Shift, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift WHERE id = $1 FOR UPDATE`, id)
	shift, err := scanShift(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift %s for update: %w", id, err)
	}

	if err := mutate(shift); err != nil {
		return nil, err
	}

	cascadeJSON, err := marshalCascade(shift.Cascade)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE shift
		SET caregiver_id = $2, status = $3, updated_at = $4, cascade_state = $5, offer_expires_at = $6
		WHERE id = $1
	`,
		shift.ID,
		nullable(shift.CaregiverID),
		string(shift.Status),
		shift.UpdatedAt,
		cascadeJSON,
		offerExpiry(shift),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update shift %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit shift update: %w", err)
	}

	return shift, nil
}

// QueryOverlappingShifts returns the caregiver's non-cancelled shifts on the
// given date whose [start, end) window intersects the supplied one
func (db *DB) QueryOverlappingShifts(ctx context.Context, caregiverID, date string, startMinute, endMinute int) ([]model.Shift, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shift
		WHERE caregiver_id = $1
		  AND shift_date = $2::date
		  AND status <> 'cancelled'
		  AND start_minute < $4
		  AND end_minute > $3
	`, caregiverID, date, startMinute, endMinute)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping shifts: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// CountCompletedShifts counts shifts this caregiver has completed for the elder
func (db *DB) CountCompletedShifts(ctx context.Context, caregiverID, elderID string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM shift
		WHERE caregiver_id = $1 AND elder_id = $2 AND status = 'completed'
	`, caregiverID, elderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed shifts: %w", err)
	}
	return count, nil
}

// CountWeeklyScheduledShifts counts the caregiver's shifts with dates in
// [weekStart, weekEnd), excluding cancelled and unfilled ones
func (db *DB) CountWeeklyScheduledShifts(ctx context.Context, caregiverID, weekStart, weekEnd string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM shift
		WHERE caregiver_id = $1
		  AND shift_date >= $2::date
		  AND shift_date < $3::date
		  AND status NOT IN ('cancelled', 'unfilled')
	`, caregiverID, weekStart, weekEnd).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count weekly shifts: %w", err)
	}
	return count, nil
}

// ListExpiredOffers returns ids of offered shifts whose pending offer
// deadline is at or before now
func (db *DB) ListExpiredOffers(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id FROM shift
		WHERE status = 'offered' AND offer_expires_at <= $1
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired offers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan shift id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired offers: %w", err)
	}
	return ids, nil
}

// ListShiftsBetween returns shifts with dates in [fromDate, toDate], ordered
// by date then start time
func (db *DB) ListShiftsBetween(ctx context.Context, fromDate, toDate string) ([]model.Shift, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shift
		WHERE shift_date >= $1::date AND shift_date <= $2::date
		ORDER BY shift_date, start_minute
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// scanShift builds a model.Shift from a row selected with shiftColumns
func scanShift(row pgx.Row) (*model.Shift, error) {
	var (
		s            model.Shift
		caregiverID  *string
		preferredID  *string
		shiftDate    time.Time
		startMinute  int
		endMinute    int
		cascadeJSON  []byte
	)

	err := row.Scan(
		&s.ID,
		&s.ElderID,
		&caregiverID,
		&shiftDate,
		&startMinute,
		&endMinute,
		&s.AssignmentMode,
		&s.Status,
		&preferredID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
		&cascadeJSON,
	)
	if err != nil {
		return nil, err
	}

	if caregiverID != nil {
		s.CaregiverID = *caregiverID
	}
	if preferredID != nil {
		s.PreferredCaregiverID = *preferredID
	}
	s.Date = shiftDate.Format(model.DateLayout)
	s.StartTime = model.FormatMinuteOfDay(startMinute)
	s.EndTime = model.FormatMinuteOfDay(endMinute)

	if len(cascadeJSON) > 0 {
		var cs model.CascadeState
		if err := json.Unmarshal(cascadeJSON, &cs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cascade state: %w", err)
		}
		s.Cascade = &cs
	}

	return &s, nil
}

func collectShifts(rows pgx.Rows) ([]model.Shift, error) {
	var shifts []model.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}
	return shifts, nil
}

// marshalCascade serializes cascade state to JSONB, nil for direct shifts
func marshalCascade(cs *model.CascadeState) ([]byte, error) {
	if cs == nil {
		return nil, nil
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cascade state: %w", err)
	}
	return data, nil
}

// offerExpiry denormalizes the pending offer deadline for the sweep index
func offerExpiry(shift *model.Shift) *time.Time {
	entry := shift.PendingOffer()
	if shift.Status != model.StatusOffered || entry == nil {
		return nil
	}
	return &entry.ExpiresAt
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
