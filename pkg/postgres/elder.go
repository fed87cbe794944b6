package postgres

import (
	"context"
	"fmt"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// GetElder retrieves an elder's scoring facts by id
func (db *DB) GetElder(ctx context.Context, id string) (*model.Elder, error) {
	var (
		e       model.Elder
		primary *string
	)
	err := db.pool.QueryRow(ctx, `
		SELECT id, owner_id, primary_caregiver_id, assigned_caregiver_ids
		FROM elder WHERE id = $1
	`, id).Scan(&e.ID, &e.OwnerID, &primary, &e.AssignedCaregiverIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get elder %s: %w", id, err)
	}
	if primary != nil {
		e.PrimaryCaregiverID = *primary
	}
	return &e, nil
}

// ListActiveCaregivers returns the agency's active caregiver pool in a stable
// order. Candidate scoring tie-breaks on this order, so it must be
// deterministic across calls.
func (db *DB) ListActiveCaregivers(ctx context.Context) ([]model.Caregiver, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, first_name, last_name, active
		FROM caregiver
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caregivers: %w", err)
	}
	defer rows.Close()

	var caregivers []model.Caregiver
	for rows.Next() {
		var c model.Caregiver
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan caregiver: %w", err)
		}
		caregivers = append(caregivers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating caregivers: %w", err)
	}
	return caregivers, nil
}
