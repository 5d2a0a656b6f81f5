package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

// CancelSessionCommand represents the command to release every hold of an
// abandoned checkout session
type CancelSessionCommand struct {
	TenantID  string
	SessionID string
}

// CancelSessionHandler handles cancel session command
type CancelSessionHandler struct {
	repo    domain.ReservationRepository
	events  domain.EventPublisher
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewCancelSessionHandler creates a new cancel session handler
func NewCancelSessionHandler(repo domain.ReservationRepository, events domain.EventPublisher, clk clock.Clock, m *metrics.Metrics) *CancelSessionHandler {
	return &CancelSessionHandler{repo: repo, events: events, clock: clk, metrics: m}
}

// Handle cancels each active reservation of the session in its own
// transaction and returns the session's reservations after the pass.
// Reservations already in a terminal status are returned unchanged, and
// lapsed holds are expired rather than cancelled.
func (h *CancelSessionHandler) Handle(ctx context.Context, cmd CancelSessionCommand) ([]domain.Reservation, error) {
	tenantID := strings.TrimSpace(cmd.TenantID)
	sessionID := strings.TrimSpace(cmd.SessionID)
	if tenantID == "" || sessionID == "" {
		return nil, domain.ErrInvalidReference
	}

	reservations, err := h.repo.FindBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session reservations: %w", err)
	}

	cancelled := 0
	for i := range reservations {
		if reservations[i].Status != domain.StatusActive {
			continue
		}

		var (
			out        domain.Reservation
			transition domain.EventType
		)
		id := reservations[i].ID
		err := retry(ctx, "cancel session", func() error {
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
		switch {
		case errors.Is(err, domain.ErrAlreadyCompleted), errors.Is(err, domain.ErrAlreadyExpired):
			// Raced with Complete or the sweeper; report the current row.
			current, findErr := h.repo.FindReservation(ctx, tenantID, id)
			if findErr != nil {
				return nil, fmt.Errorf("failed to reload reservation %s: %w", id, findErr)
			}
			reservations[i] = *current
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to cancel reservation %s: %w", id, err)
		}

		reservations[i] = out
		if transition != "" {
			h.metrics.TransitionsTotal.WithLabelValues(string(out.Status)).Inc()
			publish(ctx, h.events, transition, out)
			if transition == domain.EventReservationCancelled {
				cancelled++
			}
		}
	}

	logger.Info(ctx).
		Str("tenant_id", tenantID).
		Str("session_id", sessionID).
		Int("reservations", len(reservations)).
		Int("cancelled", cancelled).
		Msg("Session reservations cancelled")

	return reservations, nil
}
