package cascade

// Score term values for candidate ranking.
// Terms are additive and non-exclusive: a candidate may receive several at once.
//
// The preferred boost must never let a non-primary preferred caregiver outrank
// a primary caregiver on its own. With the values below the worst case for a
// primary is 40 and the best case a preferred boost can contribute is 10, so
// retuning any of these requires re-checking that relationship.
const (
	// ScorePrimaryMatch applies when the candidate is the elder's primary caregiver
	ScorePrimaryMatch = 40

	// ScoreAssignedRelationship applies when the candidate is explicitly
	// linked to the elder
	ScoreAssignedRelationship = 15

	// ScorePreferredBoost applies when the candidate matches the shift's
	// caller-supplied preferred caregiver
	ScorePreferredBoost = 10

	// ScoreContinuityCap bounds the continuity-of-care term: one point per
	// completed shift for this elder, capped here
	ScoreContinuityCap = 25

	// ScoreWorkloadBase and ScoreWorkloadPerShift shape the workload balance
	// term: max(0, base - perShift * weeklyScheduledShiftCount)
	ScoreWorkloadBase     = 10
	ScoreWorkloadPerShift = 2
)
