package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/pkg/logger"
)

// Policy holds the hold-duration limits applied to Reserve.
type Policy struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

// ResolveTTL returns ttl, or DefaultTTL when ttl is zero.
func (p Policy) ResolveTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == 0 {
		ttl = p.DefaultTTL
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("%w: must be positive", domain.ErrInvalidTTL)
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return 0, fmt.Errorf("%w: %s exceeds maximum %s", domain.ErrInvalidTTL, ttl, p.MaxTTL)
	}
	return ttl, nil
}

const maxAttempts = 5

// retry reruns fn while it fails with a lost storage race.
func retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); !domain.IsRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Debug(ctx).
			Str("operation", op).
			Int("attempt", attempt).
			Err(err).
			Msg("Retrying after concurrent update")
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, maxAttempts, err)
}

// publish announces a committed transition. Failures are logged only.
func publish(ctx context.Context, events domain.EventPublisher, eventType domain.EventType, r domain.Reservation) {
	if err := events.PublishReservationEvent(ctx, eventType, r); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", string(eventType)).
			Str("reservation_id", r.ID).
			Msg("Failed to publish reservation event")
	}
}
