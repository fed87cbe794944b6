// Package redisnotify publishes engine notifications to Redis Streams.
// Downstream delivery workers (push, email, SMS) consume the streams; the
// engine only owns the dispatch contract.
package redisnotify

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hazelcare/scheduler/pkg/core/model"
)

const (
	// OfferStream carries offer notifications addressed to caregivers
	OfferStream = "notifications:offers"

	// AlertStream carries unfilled-shift alerts addressed to owners
	AlertStream = "notifications:alerts"
)

// Publisher implements the services.Notifier contract over Redis Streams
type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

// New creates a publisher against the given Redis address
func New(addr, password string, db int, logger *zap.Logger) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewWithClient(client, logger)
}

// NewWithClient wraps an existing client, used by tests
func NewWithClient(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Ping verifies the Redis connection
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

// SendOfferNotification publishes a shift offer addressed to a caregiver.
// The offer deadline is included so the consumer can render a countdown.
func (p *Publisher) SendOfferNotification(ctx context.Context, caregiverID string, shift *model.Shift) error {
	values := map[string]interface{}{
		"type":         "shift_offer",
		"caregiver_id": caregiverID,
		"shift_id":     shift.ID,
		"elder_id":     shift.ElderID,
		"date":         shift.Date,
		"start_time":   shift.StartTime,
		"end_time":     shift.EndTime,
	}
	if entry := shift.PendingOffer(); entry != nil {
		values["expires_at"] = entry.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: OfferStream,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish offer notification: %w", err)
	}

	p.logger.Debug("Offer notification published",
		zap.String("stream", OfferStream),
		zap.String("message_id", id),
		zap.String("caregiver_id", caregiverID),
		zap.String("shift_id", shift.ID))
	return nil
}

// SendUnfilledAlert publishes an exhausted-cascade alert addressed to the
// shift's owner
func (p *Publisher) SendUnfilledAlert(ctx context.Context, ownerID string, shift *model.Shift) error {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: AlertStream,
		Values: map[string]interface{}{
			"type":       "shift_unfilled",
			"owner_id":   ownerID,
			"shift_id":   shift.ID,
			"elder_id":   shift.ElderID,
			"date":       shift.Date,
			"start_time": shift.StartTime,
			"end_time":   shift.EndTime,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish unfilled alert: %w", err)
	}

	p.logger.Debug("Unfilled alert published",
		zap.String("stream", AlertStream),
		zap.String("message_id", id),
		zap.String("owner_id", ownerID),
		zap.String("shift_id", shift.ID))
	return nil
}
