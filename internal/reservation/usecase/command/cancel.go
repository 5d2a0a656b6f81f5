package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

// CancelCommand represents the command to release a hold
type CancelCommand struct {
	TenantID      string
	ReservationID string
}

// CancelHandler handles cancel command
type CancelHandler struct {
	repo    domain.ReservationRepository
	events  domain.EventPublisher
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewCancelHandler creates a new cancel handler
func NewCancelHandler(repo domain.ReservationRepository, events domain.EventPublisher, clk clock.Clock, m *metrics.Metrics) *CancelHandler {
	return &CancelHandler{repo: repo, events: events, clock: clk, metrics: m}
}

// Handle releases the hold without touching on-hand stock. Cancelling a
// cancelled reservation returns it unchanged.
func (h *CancelHandler) Handle(ctx context.Context, cmd CancelCommand) (*domain.Reservation, error) {
	tenantID := strings.TrimSpace(cmd.TenantID)
	id := strings.TrimSpace(cmd.ReservationID)
	if tenantID == "" || id == "" {
		return nil, domain.ErrReservationNotFound
	}

	var (
		out        domain.Reservation
		transition domain.EventType
	)
	err := retry(ctx, "cancel", func() error {
		return h.repo.WithTx(ctx, func(ctx context.Context) error {
			transition = ""

			res, err := h.repo.FindReservationForUpdate(ctx, tenantID, id)
			if err != nil {
				return err
			}

			out, transition, err = cancelLocked(ctx, h.repo, *res, h.clock.Now())
			return err
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrAlreadyCompleted) ||
			errors.Is(err, domain.ErrAlreadyExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if transition == "" {
		return &out, nil
	}

	h.metrics.TransitionsTotal.WithLabelValues(string(out.Status)).Inc()
	publish(ctx, h.events, transition, out)

	if transition == domain.EventReservationExpired {
		logger.Info(ctx).
			Str("tenant_id", out.TenantID).
			Str("reservation_id", out.ID).
			Msg("Cancel rejected: hold lapsed, reservation expired")
		return nil, domain.ErrAlreadyExpired
	}

	logger.Info(ctx).
		Str("tenant_id", out.TenantID).
		Str("reservation_id", out.ID).
		Str("session_id", out.SessionID).
		Int("quantity", out.Quantity).
		Msg("Reservation cancelled")

	return &out, nil
}

// cancelLocked applies the cancel state machine to a row already locked by
// the caller's transaction. It reports the event to publish after commit,
// or "" when nothing changed.
func cancelLocked(ctx context.Context, repo domain.ReservationRepository, res domain.Reservation, now time.Time) (domain.Reservation, domain.EventType, error) {
	switch res.Status {
	case domain.StatusCancelled:
		return res, "", nil
	case domain.StatusCompleted:
		return res, "", domain.ErrAlreadyCompleted
	case domain.StatusExpired:
		return res, "", domain.ErrAlreadyExpired
	}

	if res.IsLapsed(now) {
		if _, err := repo.TransitionStatus(ctx, res.ID, domain.StatusActive, domain.StatusExpired, now); err != nil {
			return res, "", err
		}
		return res.WithStatus(domain.StatusExpired, now), domain.EventReservationExpired, nil
	}

	changed, err := repo.TransitionStatus(ctx, res.ID, domain.StatusActive, domain.StatusCancelled, now)
	if err != nil {
		return res, "", err
	}
	if !changed {
		return res, "", domain.ErrVersionConflict
	}
	return res.WithStatus(domain.StatusCancelled, now), domain.EventReservationCancelled, nil
}
