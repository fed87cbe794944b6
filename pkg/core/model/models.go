package model

import "time"

// AssignmentMode determines how a shift gets staffed
type AssignmentMode string

const (
	// ModeDirect assigns a named caregiver at creation time
	ModeDirect AssignmentMode = "direct"

	// ModeCascade offers the shift to ranked candidates one at a time
	ModeCascade AssignmentMode = "cascade"
)

// ShiftStatus is the lifecycle state of a shift
type ShiftStatus string

const (
	StatusOffered   ShiftStatus = "offered"
	StatusScheduled ShiftStatus = "scheduled"
	StatusUnfilled  ShiftStatus = "unfilled"
	StatusCancelled ShiftStatus = "cancelled"
	StatusCompleted ShiftStatus = "completed"
)

// OfferResolution is the outcome of a single cascade offer
type OfferResolution string

const (
	ResolutionPending  OfferResolution = "pending"
	ResolutionAccepted OfferResolution = "accepted"
	ResolutionDeclined OfferResolution = "declined"
	ResolutionExpired  OfferResolution = "expired"
)

// Shift represents a caregiver caring for an elder over a time window
type Shift struct {
	ID      string `json:"id"`
	ElderID string `json:"elderId"`

	// CaregiverID is empty until the shift is resolved to a caregiver
	CaregiverID string `json:"caregiverId,omitempty"`

	// Date in "2006-01-02" format, interpreted in the engine's canonical timezone
	Date string `json:"date"`

	// StartTime and EndTime in "15:04" format; the window is half-open [start, end)
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	AssignmentMode AssignmentMode `json:"assignmentMode"`
	Status         ShiftStatus    `json:"status"`

	// PreferredCaregiverID is an optional caller-supplied ranking boost (cascade only)
	PreferredCaregiverID string `json:"preferredCaregiverId,omitempty"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Cascade is nil for direct-assign shifts and for cascade shifts
	// that have not started ranking yet
	Cascade *CascadeState `json:"cascade,omitempty"`
}

// CascadeState tracks a cascade shift's ranked candidates and offer progress.
// RankedCandidates is a snapshot: computed once at cascade start and never
// re-sorted or re-scored for the lifetime of the cascade.
type CascadeState struct {
	RankedCandidates  []Candidate   `json:"rankedCandidates"`
	CurrentOfferIndex int           `json:"currentOfferIndex"`
	OfferHistory      []OfferRecord `json:"offerHistory"`
}

// Candidate is a scored caregiver in a cascade's ranking
type Candidate struct {
	CaregiverID string         `json:"caregiverId"`
	Score       int            `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// ScoreBreakdown itemizes the additive terms that make up a candidate's score
type ScoreBreakdown struct {
	PrimaryMatch         int `json:"primaryMatch"`
	AssignedRelationship int `json:"assignedRelationship"`
	PreferredBoost       int `json:"preferredBoost"`
	Continuity           int `json:"continuity"`
	WorkloadBalance      int `json:"workloadBalance"`
}

// Total returns the sum of all breakdown terms
func (b ScoreBreakdown) Total() int {
	return b.PrimaryMatch + b.AssignedRelationship + b.PreferredBoost + b.Continuity + b.WorkloadBalance
}

// OfferRecord is an append-only entry in a cascade's offer history.
// Resolution is set exactly once: pending -> accepted | declined | expired.
type OfferRecord struct {
	CaregiverID string          `json:"caregiverId"`
	OfferedAt   time.Time       `json:"offeredAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Resolution  OfferResolution `json:"resolution"`
}

// Elder is the read-only fact source for candidate scoring
type Elder struct {
	ID                   string
	OwnerID              string
	PrimaryCaregiverID   string
	AssignedCaregiverIDs []string
}

// Caregiver is a member of an agency's active caregiver pool
type Caregiver struct {
	ID        string
	FirstName string
	LastName  string
	Active    bool
}

// IsTerminal reports whether the shift can undergo no further cascade transitions
func (s *Shift) IsTerminal() bool {
	switch s.Status {
	case StatusScheduled, StatusUnfilled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// PendingOffer returns the offer history entry at the current offer index,
// or nil if the shift has no cascade or the current entry is already resolved
func (s *Shift) PendingOffer() *OfferRecord {
	if s.Cascade == nil {
		return nil
	}
	idx := s.Cascade.CurrentOfferIndex
	if idx < 0 || idx >= len(s.Cascade.OfferHistory) {
		return nil
	}
	entry := &s.Cascade.OfferHistory[idx]
	if entry.Resolution != ResolutionPending {
		return nil
	}
	return entry
}
