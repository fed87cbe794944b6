package services

import (
	"context"
	"time"

	"github.com/hazelcare/scheduler/internal/metrics"
	"github.com/hazelcare/scheduler/pkg/core/model"
)

// EngineOptions carries the tunables shared by the engine services
type EngineOptions struct {
	// OfferWindow is how long a caregiver has to respond before the
	// cascade advances past them
	OfferWindow time.Duration

	// MinShiftDuration is the creation-time floor on shift length
	MinShiftDuration time.Duration

	// Location is the canonical time reference for date-boundary math
	Location *time.Location

	// Metrics is optional; a nil collector disables instrumentation
	Metrics *metrics.Collector
}

// DefaultEngineOptions returns the engine defaults: a 30 minute offer window,
// a two hour minimum shift, and UTC date boundaries.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		OfferWindow:      30 * time.Minute,
		MinShiftDuration: 2 * time.Hour,
		Location:         time.UTC,
	}
}

// Notifier is the dispatch contract to the notification collaborator.
// Delivery mechanics are out of the engine's hands; a failed dispatch is
// logged but never fails the operation that triggered it.
type Notifier interface {
	SendOfferNotification(ctx context.Context, caregiverID string, shift *model.Shift) error
	SendUnfilledAlert(ctx context.Context, ownerID string, shift *model.Shift) error
}

// OfferStore provides the transactional read-modify-write the cascade's
// resolution transitions require. UpdateShift loads the shift under a
// single-writer guarantee, applies mutate, and persists the result; if mutate
// returns an error nothing is written.
type OfferStore interface {
	UpdateShift(ctx context.Context, id string, mutate func(*model.Shift) error) (*model.Shift, error)
}
