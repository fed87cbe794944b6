package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// mockStore implements every store interface the services need against
// in-memory state
type mockStore struct {
	elders     map[string]*model.Elder
	caregivers []model.Caregiver
	shifts     map[string]*model.Shift

	// overlapping holds caregiver ids with a conflicting shift
	overlapping map[string]bool

	// counts per caregiver
	completed map[string]int
	weekly    map[string]int

	overlapErrFor map[string]error
	listPoolErr   error
	insertErr     error
	updateErr     error
	listExpErr    error
	listShiftsErr error

	insertedShifts []*model.Shift
	updateCalls    []string
}

func newMockStore() *mockStore {
	return &mockStore{
		elders:        map[string]*model.Elder{},
		shifts:        map[string]*model.Shift{},
		overlapping:   map[string]bool{},
		completed:     map[string]int{},
		weekly:        map[string]int{},
		overlapErrFor: map[string]error{},
	}
}

func (m *mockStore) GetElder(ctx context.Context, id string) (*model.Elder, error) {
	elder, ok := m.elders[id]
	if !ok {
		return nil, fmt.Errorf("elder %s not found", id)
	}
	return elder, nil
}

func (m *mockStore) ListActiveCaregivers(ctx context.Context) ([]model.Caregiver, error) {
	if m.listPoolErr != nil {
		return nil, m.listPoolErr
	}
	return m.caregivers, nil
}

func (m *mockStore) QueryOverlappingShifts(ctx context.Context, caregiverID, date string, startMinute, endMinute int) ([]model.Shift, error) {
	if err := m.overlapErrFor[caregiverID]; err != nil {
		return nil, err
	}
	if m.overlapping[caregiverID] {
		return []model.Shift{{ID: "conflict"}}, nil
	}
	return nil, nil
}

func (m *mockStore) CountCompletedShifts(ctx context.Context, caregiverID, elderID string) (int, error) {
	return m.completed[caregiverID], nil
}

func (m *mockStore) CountWeeklyScheduledShifts(ctx context.Context, caregiverID, weekStart, weekEnd string) (int, error) {
	return m.weekly[caregiverID], nil
}

func (m *mockStore) InsertShift(ctx context.Context, shift *model.Shift) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertedShifts = append(m.insertedShifts, shift)
	m.shifts[shift.ID] = shift
	return nil
}

func (m *mockStore) UpdateShift(ctx context.Context, id string, mutate func(*model.Shift) error) (*model.Shift, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updateCalls = append(m.updateCalls, id)
	shift, ok := m.shifts[id]
	if !ok {
		return nil, fmt.Errorf("shift %s not found", id)
	}
	if err := mutate(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (m *mockStore) ListExpiredOffers(ctx context.Context, now time.Time) ([]string, error) {
	if m.listExpErr != nil {
		return nil, m.listExpErr
	}
	var ids []string
	for id, shift := range m.shifts {
		if shift.Status != model.StatusOffered {
			continue
		}
		if entry := shift.PendingOffer(); entry != nil && !now.Before(entry.ExpiresAt) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockStore) ListShiftsBetween(ctx context.Context, fromDate, toDate string) ([]model.Shift, error) {
	if m.listShiftsErr != nil {
		return nil, m.listShiftsErr
	}
	var out []model.Shift
	for _, shift := range m.shifts {
		if shift.Date >= fromDate && shift.Date <= toDate {
			out = append(out, *shift)
		}
	}
	return out, nil
}

// offerCall records one notification dispatch
type offerCall struct {
	caregiverID string
	shiftID     string
}

type alertCall struct {
	ownerID string
	shiftID string
}

// mockNotifier records dispatched notifications
type mockNotifier struct {
	offers   []offerCall
	alerts   []alertCall
	offerErr error
	alertErr error
}

func (m *mockNotifier) SendOfferNotification(ctx context.Context, caregiverID string, shift *model.Shift) error {
	if m.offerErr != nil {
		return m.offerErr
	}
	m.offers = append(m.offers, offerCall{caregiverID: caregiverID, shiftID: shift.ID})
	return nil
}

func (m *mockNotifier) SendUnfilledAlert(ctx context.Context, ownerID string, shift *model.Shift) error {
	if m.alertErr != nil {
		return m.alertErr
	}
	m.alerts = append(m.alerts, alertCall{ownerID: ownerID, shiftID: shift.ID})
	return nil
}

// testOptions returns engine options with a short offer window and no
// minimum-duration surprises
func testOptions() EngineOptions {
	return EngineOptions{
		OfferWindow:      30 * time.Minute,
		MinShiftDuration: 2 * time.Hour,
		Location:         time.UTC,
	}
}

// futureDate returns a date string safely in the future for validation
func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 14).Format(model.DateLayout)
}
