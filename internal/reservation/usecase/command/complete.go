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

// CompleteCommand represents the command to convert a hold into a sale
type CompleteCommand struct {
	TenantID      string
	ReservationID string
}

// CompleteHandler handles complete command
type CompleteHandler struct {
	repo    domain.ReservationRepository
	events  domain.EventPublisher
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewCompleteHandler creates a new complete handler
func NewCompleteHandler(repo domain.ReservationRepository, events domain.EventPublisher, clk clock.Clock, m *metrics.Metrics) *CompleteHandler {
	return &CompleteHandler{repo: repo, events: events, clock: clk, metrics: m}
}

// Handle decrements on-hand stock by the held quantity and marks the
// reservation completed. Completing an already completed reservation
// returns it unchanged. A hold that lapsed before completion is expired
// on the spot and rejected.
func (h *CompleteHandler) Handle(ctx context.Context, cmd CompleteCommand) (*domain.Reservation, error) {
	tenantID := strings.TrimSpace(cmd.TenantID)
	id := strings.TrimSpace(cmd.ReservationID)
	if tenantID == "" || id == "" {
		return nil, domain.ErrReservationNotFound
	}

	var (
		out        domain.Reservation
		transition domain.EventType
	)
	err := retry(ctx, "complete", func() error {
		return h.repo.WithTx(ctx, func(ctx context.Context) error {
			transition = ""

			res, err := h.repo.FindReservationForUpdate(ctx, tenantID, id)
			if err != nil {
				return err
			}

			switch res.Status {
			case domain.StatusCompleted:
				out = *res
				return nil
			case domain.StatusCancelled:
				return domain.ErrAlreadyCancelled
			case domain.StatusExpired:
				return domain.ErrAlreadyExpired
			}

			now := h.clock.Now()
			if res.IsLapsed(now) {
				if _, err := h.repo.TransitionStatus(ctx, res.ID, domain.StatusActive, domain.StatusExpired, now); err != nil {
					return err
				}
				out = res.WithStatus(domain.StatusExpired, now)
				transition = domain.EventReservationExpired
				return nil
			}

			unit, err := h.repo.GetStockUnitForUpdate(ctx, res.UnitKey())
			if err != nil {
				return err
			}
			if unit.OnHand < res.Quantity {
				h.metrics.CorruptionTotal.Inc()
				logger.Alert(ctx).
					Str("tenant_id", res.TenantID).
					Str("reservation_id", res.ID).
					Str("unit", res.UnitKey().String()).
					Int("on_hand", unit.OnHand).
					Int("quantity", res.Quantity).
					Msg("Inventory corruption: on-hand stock below held quantity at completion")
				return domain.ErrInventoryCorruption
			}

			if err := h.repo.DecrementStock(ctx, unit.ID, unit.Version, res.Quantity); err != nil {
				return err
			}
			changed, err := h.repo.TransitionStatus(ctx, res.ID, domain.StatusActive, domain.StatusCompleted, now)
			if err != nil {
				return err
			}
			if !changed {
				return domain.ErrVersionConflict
			}

			out = res.WithStatus(domain.StatusCompleted, now)
			transition = domain.EventReservationCompleted
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrAlreadyCancelled) ||
			errors.Is(err, domain.ErrAlreadyExpired) ||
			errors.Is(err, domain.ErrInventoryCorruption) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete reservation: %w", err)
	}

	switch transition {
	case domain.EventReservationExpired:
		h.metrics.TransitionsTotal.WithLabelValues(string(domain.StatusExpired)).Inc()
		logger.Info(ctx).
			Str("tenant_id", out.TenantID).
			Str("reservation_id", out.ID).
			Msg("Completion rejected: hold lapsed, reservation expired")
		publish(ctx, h.events, transition, out)
		return nil, domain.ErrAlreadyExpired
	case domain.EventReservationCompleted:
		h.metrics.TransitionsTotal.WithLabelValues(string(domain.StatusCompleted)).Inc()
		logger.Info(ctx).
			Str("tenant_id", out.TenantID).
			Str("reservation_id", out.ID).
			Str("unit", out.UnitKey().String()).
			Int("quantity", out.Quantity).
			Msg("Reservation completed")
		publish(ctx, h.events, transition, out)
	}

	return &out, nil
}
