package cascade

import (
	"time"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// Decision is a caregiver's response to an offer
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Outcome describes the effect of a cascade transition
type Outcome int

const (
	// OutcomeNoOp means the transition did not apply: the offer was already
	// resolved, the caregiver did not match, or the shift is terminal
	OutcomeNoOp Outcome = iota

	// OutcomeOffered means a new offer is now pending
	OutcomeOffered

	// OutcomeScheduled means the offer was accepted and the shift is staffed
	OutcomeScheduled

	// OutcomeUnfilled means every candidate was exhausted
	OutcomeUnfilled
)

// StartCascade attaches a cascade state with the given ranked candidate
// snapshot and offers the shift to the top candidate. If the ranking is
// empty, the shift goes straight to unfilled.
//
// The snapshot is immutable for the cascade's lifetime: candidates are never
// re-scored or re-sorted mid-cascade, even if availability changes later.
func StartCascade(shift *model.Shift, ranked []model.Candidate, now time.Time, offerWindow time.Duration) Outcome {
	shift.Cascade = &model.CascadeState{
		RankedCandidates:  ranked,
		CurrentOfferIndex: 0,
		OfferHistory:      []model.OfferRecord{},
	}

	if len(ranked) == 0 {
		shift.CaregiverID = ""
		shift.Status = model.StatusUnfilled
		shift.UpdatedAt = now
		return OutcomeUnfilled
	}

	beginOffer(shift, now, offerWindow)
	return OutcomeOffered
}

// beginOffer points the shift at the candidate under CurrentOfferIndex and
// appends a pending offer history entry with a computed deadline
func beginOffer(shift *model.Shift, now time.Time, offerWindow time.Duration) {
	cand := shift.Cascade.RankedCandidates[shift.Cascade.CurrentOfferIndex]

	shift.CaregiverID = cand.CaregiverID
	shift.Status = model.StatusOffered
	shift.UpdatedAt = now
	shift.Cascade.OfferHistory = append(shift.Cascade.OfferHistory, model.OfferRecord{
		CaregiverID: cand.CaregiverID,
		OfferedAt:   now,
		ExpiresAt:   now.Add(offerWindow),
		Resolution:  model.ResolutionPending,
	})
}

// ResolveOffer applies a caregiver's accept or decline to the pending offer.
//
// The transition is idempotent: if the shift is not in the offered state, the
// current offer is already resolved, or the caregiver does not match the
// pending offer, nothing changes and OutcomeNoOp is returned. This is how a
// response racing a sweep (or a duplicate response) resolves exactly once.
func ResolveOffer(shift *model.Shift, caregiverID string, decision Decision, now time.Time, offerWindow time.Duration) Outcome {
	entry := pendingEntry(shift)
	if entry == nil {
		return OutcomeNoOp
	}
	if entry.CaregiverID != caregiverID {
		return OutcomeNoOp
	}

	if decision == DecisionAccept {
		entry.Resolution = model.ResolutionAccepted
		shift.Status = model.StatusScheduled
		shift.UpdatedAt = now
		return OutcomeScheduled
	}

	entry.Resolution = model.ResolutionDeclined
	return advance(shift, now, offerWindow)
}

// ExpireOffer resolves the pending offer as expired if its deadline has
// passed, advancing the cascade. A no-op if the shift is not offered, the
// entry is already resolved, or the deadline has not been reached.
func ExpireOffer(shift *model.Shift, now time.Time, offerWindow time.Duration) Outcome {
	entry := pendingEntry(shift)
	if entry == nil {
		return OutcomeNoOp
	}
	if now.Before(entry.ExpiresAt) {
		return OutcomeNoOp
	}

	entry.Resolution = model.ResolutionExpired
	return advance(shift, now, offerWindow)
}

// Cancel puts the shift into the cancelled terminal state. Safe to apply
// regardless of cascade progress; any later resolve or expire attempt is a
// no-op because the shift is no longer offered. Already-terminal shifts are
// left untouched.
func Cancel(shift *model.Shift, now time.Time) bool {
	if shift.Status == model.StatusCancelled || shift.Status == model.StatusCompleted {
		return false
	}
	shift.Status = model.StatusCancelled
	shift.UpdatedAt = now
	return true
}

// advance moves to the next ranked candidate, or exhausts the cascade
func advance(shift *model.Shift, now time.Time, offerWindow time.Duration) Outcome {
	shift.Cascade.CurrentOfferIndex++

	if shift.Cascade.CurrentOfferIndex < len(shift.Cascade.RankedCandidates) {
		beginOffer(shift, now, offerWindow)
		return OutcomeOffered
	}

	shift.CaregiverID = ""
	shift.Status = model.StatusUnfilled
	shift.UpdatedAt = now
	return OutcomeUnfilled
}

// pendingEntry returns the pending offer entry only when the shift is in a
// state where a resolution may apply
func pendingEntry(shift *model.Shift) *model.OfferRecord {
	if shift.Status != model.StatusOffered {
		return nil
	}
	return shift.PendingOffer()
}
