package cascade

import (
	"sort"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

// CaregiverCounts holds the freshly fetched per-caregiver counts a score
// depends on. Counts are queried at cascade start for every candidate and
// never cached across cascades, so scores cannot go stale between requests.
type CaregiverCounts struct {
	// CompletedShiftsForElder is how many shifts this caregiver has
	// completed for the shift's elder
	CompletedShiftsForElder int

	// WeeklyScheduledShifts is how many shifts this caregiver already has
	// in the week containing the shift date
	WeeklyScheduledShifts int
}

// ScoreCandidates computes an additive score for every caregiver in the pool.
// It is a pure function: conflict exclusion happens separately, and the
// returned slice preserves pool iteration order (the deterministic tie-break
// used by RankCandidates).
func ScoreCandidates(elder *model.Elder, pool []model.Caregiver, counts map[string]CaregiverCounts, preferredCaregiverID string) []model.Candidate {
	assigned := make(map[string]bool, len(elder.AssignedCaregiverIDs))
	for _, id := range elder.AssignedCaregiverIDs {
		assigned[id] = true
	}

	candidates := make([]model.Candidate, 0, len(pool))
	for _, cg := range pool {
		var b model.ScoreBreakdown

		if elder.PrimaryCaregiverID != "" && cg.ID == elder.PrimaryCaregiverID {
			b.PrimaryMatch = ScorePrimaryMatch
		}
		if assigned[cg.ID] {
			b.AssignedRelationship = ScoreAssignedRelationship
		}
		if preferredCaregiverID != "" && cg.ID == preferredCaregiverID {
			b.PreferredBoost = ScorePreferredBoost
		}

		c := counts[cg.ID]
		b.Continuity = min(c.CompletedShiftsForElder, ScoreContinuityCap)
		b.WorkloadBalance = max(0, ScoreWorkloadBase-ScoreWorkloadPerShift*c.WeeklyScheduledShifts)

		candidates = append(candidates, model.Candidate{
			CaregiverID: cg.ID,
			Score:       b.Total(),
			Breakdown:   b,
		})
	}

	return candidates
}

// RankCandidates sorts candidates by descending score. The sort is stable so
// equal scores keep their original pool iteration order, making the ranking
// deterministic for a given pool.
func RankCandidates(candidates []model.Candidate) []model.Candidate {
	ranked := make([]model.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
