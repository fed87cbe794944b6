package cascade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

const testWindow = 30 * time.Minute

func newCascadeShift() *model.Shift {
	return &model.Shift{
		ID:             "s1",
		ElderID:        "e1",
		AssignmentMode: model.ModeCascade,
		Date:           "2025-07-01",
		StartTime:      "09:00",
		EndTime:        "17:00",
		CreatedBy:      "owner1",
	}
}

func ranked(ids ...string) []model.Candidate {
	out := make([]model.Candidate, len(ids))
	for i, id := range ids {
		out[i] = model.Candidate{CaregiverID: id, Score: 100 - i}
	}
	return out
}

// assertExactlyOnePending checks the core offered-state invariant: exactly
// one offer history entry is pending, and it sits at the current offer index
func assertExactlyOnePending(t *testing.T, shift *model.Shift) {
	t.Helper()
	require.Equal(t, model.StatusOffered, shift.Status)
	require.NotNil(t, shift.Cascade)

	pending := 0
	for i, entry := range shift.Cascade.OfferHistory {
		if entry.Resolution == model.ResolutionPending {
			pending++
			assert.Equal(t, shift.Cascade.CurrentOfferIndex, i)
		}
	}
	assert.Equal(t, 1, pending)
}

func TestStartCascade_OffersTopCandidate(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()

	outcome := StartCascade(shift, ranked("c1", "c2", "c3"), now, testWindow)

	assert.Equal(t, OutcomeOffered, outcome)
	assert.Equal(t, "c1", shift.CaregiverID)
	assertExactlyOnePending(t, shift)

	entry := shift.Cascade.OfferHistory[0]
	assert.Equal(t, "c1", entry.CaregiverID)
	assert.Equal(t, now, entry.OfferedAt)
	assert.Equal(t, now.Add(testWindow), entry.ExpiresAt)
}

func TestStartCascade_EmptyRankingGoesStraightToUnfilled(t *testing.T) {
	shift := newCascadeShift()

	outcome := StartCascade(shift, nil, time.Now(), testWindow)

	assert.Equal(t, OutcomeUnfilled, outcome)
	assert.Equal(t, model.StatusUnfilled, shift.Status)
	assert.Empty(t, shift.CaregiverID)
	require.NotNil(t, shift.Cascade)
	assert.Empty(t, shift.Cascade.RankedCandidates)
	assert.Empty(t, shift.Cascade.OfferHistory)
}

func TestResolveOffer_AcceptSchedules(t *testing.T) {
	shift := newCascadeShift()
	StartCascade(shift, ranked("c1", "c2"), time.Now(), testWindow)

	outcome := ResolveOffer(shift, "c1", DecisionAccept, time.Now(), testWindow)

	assert.Equal(t, OutcomeScheduled, outcome)
	assert.Equal(t, model.StatusScheduled, shift.Status)
	assert.Equal(t, "c1", shift.CaregiverID)
	assert.Equal(t, model.ResolutionAccepted, shift.Cascade.OfferHistory[0].Resolution)
}

func TestResolveOffer_DeclineAdvancesToNextCandidate(t *testing.T) {
	shift := newCascadeShift()
	StartCascade(shift, ranked("c1", "c2", "c3"), time.Now(), testWindow)

	outcome := ResolveOffer(shift, "c1", DecisionDecline, time.Now(), testWindow)

	assert.Equal(t, OutcomeOffered, outcome)
	assert.Equal(t, "c2", shift.CaregiverID)
	assert.Equal(t, 1, shift.Cascade.CurrentOfferIndex)
	assert.Equal(t, model.ResolutionDeclined, shift.Cascade.OfferHistory[0].Resolution)
	assertExactlyOnePending(t, shift)
}

func TestResolveOffer_DecliningLastCandidateExhaustsCascade(t *testing.T) {
	shift := newCascadeShift()
	StartCascade(shift, ranked("c1"), time.Now(), testWindow)

	outcome := ResolveOffer(shift, "c1", DecisionDecline, time.Now(), testWindow)

	assert.Equal(t, OutcomeUnfilled, outcome)
	assert.Equal(t, model.StatusUnfilled, shift.Status)
	assert.Empty(t, shift.CaregiverID)
}

func TestResolveOffer_WrongCaregiverIsNoOp(t *testing.T) {
	shift := newCascadeShift()
	StartCascade(shift, ranked("c1", "c2"), time.Now(), testWindow)

	outcome := ResolveOffer(shift, "c2", DecisionAccept, time.Now(), testWindow)

	assert.Equal(t, OutcomeNoOp, outcome)
	assert.Equal(t, "c1", shift.CaregiverID)
	assertExactlyOnePending(t, shift)
}

func TestResolveOffer_SecondResolutionIsNoOp(t *testing.T) {
	shift := newCascadeShift()
	StartCascade(shift, ranked("c1", "c2"), time.Now(), testWindow)

	require.Equal(t, OutcomeScheduled, ResolveOffer(shift, "c1", DecisionAccept, time.Now(), testWindow))

	// A duplicate accept and a late decline both change nothing
	assert.Equal(t, OutcomeNoOp, ResolveOffer(shift, "c1", DecisionAccept, time.Now(), testWindow))
	assert.Equal(t, OutcomeNoOp, ResolveOffer(shift, "c1", DecisionDecline, time.Now(), testWindow))
	assert.Equal(t, model.StatusScheduled, shift.Status)
	assert.Equal(t, model.ResolutionAccepted, shift.Cascade.OfferHistory[0].Resolution)
}

func TestExpireOffer_BeforeDeadlineIsNoOp(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()
	StartCascade(shift, ranked("c1", "c2"), now, testWindow)

	outcome := ExpireOffer(shift, now.Add(testWindow-time.Second), testWindow)

	assert.Equal(t, OutcomeNoOp, outcome)
	assert.Equal(t, "c1", shift.CaregiverID)
	assertExactlyOnePending(t, shift)
}

func TestExpireOffer_PastDeadlineAdvances(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()
	StartCascade(shift, ranked("c1", "c2"), now, testWindow)

	outcome := ExpireOffer(shift, now.Add(testWindow), testWindow)

	assert.Equal(t, OutcomeOffered, outcome)
	assert.Equal(t, "c2", shift.CaregiverID)
	assert.Equal(t, model.ResolutionExpired, shift.Cascade.OfferHistory[0].Resolution)
	assertExactlyOnePending(t, shift)
}

func TestExpireOffer_AfterAcceptIsNoOp(t *testing.T) {
	// A sweep firing after an accept was recorded for the same offer index
	// must not disturb the scheduled shift
	shift := newCascadeShift()
	now := time.Now()
	StartCascade(shift, ranked("c1", "c2"), now, testWindow)
	require.Equal(t, OutcomeScheduled, ResolveOffer(shift, "c1", DecisionAccept, now, testWindow))

	outcome := ExpireOffer(shift, now.Add(2*testWindow), testWindow)

	assert.Equal(t, OutcomeNoOp, outcome)
	assert.Equal(t, model.StatusScheduled, shift.Status)
	assert.Equal(t, "c1", shift.CaregiverID)
	assert.Equal(t, model.ResolutionAccepted, shift.Cascade.OfferHistory[0].Resolution)
}

func TestCascadeToExhaustionThroughMixedResolutions(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()
	StartCascade(shift, ranked("c1", "c2", "c3"), now, testWindow)

	require.Equal(t, OutcomeOffered, ResolveOffer(shift, "c1", DecisionDecline, now, testWindow))
	require.Equal(t, OutcomeOffered, ExpireOffer(shift, now.Add(testWindow), testWindow))
	require.Equal(t, OutcomeUnfilled, ResolveOffer(shift, "c3", DecisionDecline, now, testWindow))

	assert.Equal(t, model.StatusUnfilled, shift.Status)
	assert.Len(t, shift.Cascade.OfferHistory, 3)
	assert.Equal(t, model.ResolutionDeclined, shift.Cascade.OfferHistory[0].Resolution)
	assert.Equal(t, model.ResolutionExpired, shift.Cascade.OfferHistory[1].Resolution)
	assert.Equal(t, model.ResolutionDeclined, shift.Cascade.OfferHistory[2].Resolution)
}

func TestCancel_BlocksFurtherTransitions(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()
	StartCascade(shift, ranked("c1", "c2"), now, testWindow)

	assert.True(t, Cancel(shift, now))
	assert.Equal(t, model.StatusCancelled, shift.Status)

	// Post-cancellation transitions are no-ops
	assert.Equal(t, OutcomeNoOp, ResolveOffer(shift, "c1", DecisionAccept, now, testWindow))
	assert.Equal(t, OutcomeNoOp, ExpireOffer(shift, now.Add(2*testWindow), testWindow))
	assert.Equal(t, model.StatusCancelled, shift.Status)

	// Cancelling again changes nothing
	assert.False(t, Cancel(shift, now))
}

func TestCancel_CompletedShiftIsLeftAlone(t *testing.T) {
	shift := newCascadeShift()
	shift.Status = model.StatusCompleted

	assert.False(t, Cancel(shift, time.Now()))
	assert.Equal(t, model.StatusCompleted, shift.Status)
}

func TestStartCascade_SnapshotIsNeverReordered(t *testing.T) {
	shift := newCascadeShift()
	now := time.Now()
	snapshot := ranked("c1", "c2", "c3")
	StartCascade(shift, snapshot, now, testWindow)

	ResolveOffer(shift, "c1", DecisionDecline, now, testWindow)
	ExpireOffer(shift, now.Add(testWindow), testWindow)

	// The ranked snapshot is untouched by transitions
	require.Len(t, shift.Cascade.RankedCandidates, 3)
	assert.Equal(t, "c1", shift.Cascade.RankedCandidates[0].CaregiverID)
	assert.Equal(t, "c2", shift.Cascade.RankedCandidates[1].CaregiverID)
	assert.Equal(t, "c3", shift.Cascade.RankedCandidates[2].CaregiverID)
}
