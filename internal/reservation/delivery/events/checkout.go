package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/usecase/command"
	"github.com/tair/stock-reservations/kafka"
	"github.com/tair/stock-reservations/pkg/logger"
)

// CheckoutHandler turns checkout outcome events into Complete and
// CancelSession calls.
type CheckoutHandler struct {
	complete      *command.CompleteHandler
	cancelSession *command.CancelSessionHandler
	metrics       *metrics.Metrics
}

// NewCheckoutHandler creates a new checkout outcome handler
func NewCheckoutHandler(complete *command.CompleteHandler, cancelSession *command.CancelSessionHandler, m *metrics.Metrics) *CheckoutHandler {
	return &CheckoutHandler{complete: complete, cancelSession: cancelSession, metrics: m}
}

// Register binds the handler to the consumer's event types.
func (h *CheckoutHandler) Register(c *kafka.Consumer) {
	c.RegisterHandler(kafka.EventTypePaymentSucceeded, h.HandlePaymentSucceeded)
	c.RegisterHandler(kafka.EventTypeCheckoutAbandoned, h.HandleCheckoutAbandoned)
}

// HandlePaymentSucceeded completes every reservation listed in the event.
// Redelivered events and holds that already reached a terminal status are
// acknowledged. Storage failures are returned for retry; corruption alone is
// returned as permanent since only an operator can repair it.
func (h *CheckoutHandler) HandlePaymentSucceeded(ctx context.Context, event kafka.CheckoutOutcomeEvent) error {
	var retryable, corrupted []error
	for _, id := range event.ReservationIDs {
		_, err := h.complete.Handle(ctx, command.CompleteCommand{
			TenantID:      event.TenantID,
			ReservationID: id,
		})
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrAlreadyCancelled),
			errors.Is(err, domain.ErrAlreadyExpired),
			errors.Is(err, domain.ErrNotFound):
			logger.Warn(ctx).
				Err(err).
				Str("tenant_id", event.TenantID).
				Str("session_id", event.SessionID).
				Str("reservation_id", id).
				Str("order_id", event.OrderID).
				Msg("Paid checkout references a reservation that cannot be completed")
		case errors.Is(err, domain.ErrInventoryCorruption):
			corrupted = append(corrupted, fmt.Errorf("complete %s: %w", id, err))
		default:
			retryable = append(retryable, fmt.Errorf("complete %s: %w", id, err))
		}
	}

	var err error
	switch {
	case len(retryable) > 0:
		err = errors.Join(retryable...)
	case len(corrupted) > 0:
		err = kafka.Permanent(errors.Join(corrupted...))
	}
	h.observe(kafka.EventTypePaymentSucceeded, err)
	return err
}

// HandleCheckoutAbandoned releases every active hold of the session.
func (h *CheckoutHandler) HandleCheckoutAbandoned(ctx context.Context, event kafka.CheckoutOutcomeEvent) error {
	_, err := h.cancelSession.Handle(ctx, command.CancelSessionCommand{
		TenantID:  event.TenantID,
		SessionID: event.SessionID,
	})
	h.observe(kafka.EventTypeCheckoutAbandoned, err)
	return err
}

func (h *CheckoutHandler) observe(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.metrics.EventsConsumed.WithLabelValues(eventType, result).Inc()
}
