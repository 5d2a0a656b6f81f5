package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

// ReserveCommand represents the command to hold stock for a checkout session
type ReserveCommand struct {
	TenantID       string
	PieceID        string
	VariantID      string
	SessionID      string
	Quantity       int
	TTL            time.Duration
	IdempotencyKey string
}

// ReserveHandler handles reserve command
type ReserveHandler struct {
	repo    domain.ReservationRepository
	events  domain.EventPublisher
	clock   clock.Clock
	policy  Policy
	metrics *metrics.Metrics
}

// NewReserveHandler creates a new reserve handler
func NewReserveHandler(repo domain.ReservationRepository, events domain.EventPublisher, clk clock.Clock, policy Policy, m *metrics.Metrics) *ReserveHandler {
	return &ReserveHandler{repo: repo, events: events, clock: clk, policy: policy, metrics: m}
}

// Handle checks availability and inserts an active reservation atomically
// with respect to every other Reserve and Complete on the same stock unit.
// A replay carrying a known idempotency key returns the original
// reservation in whatever status it now has.
func (h *ReserveHandler) Handle(ctx context.Context, cmd ReserveCommand) (*domain.Reservation, error) {
	key := domain.NewUnitKey(cmd.TenantID, cmd.PieceID, cmd.VariantID)
	sessionID := strings.TrimSpace(cmd.SessionID)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, domain.ErrInvalidReference
	}
	if cmd.Quantity <= 0 {
		h.metrics.ReserveTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, cmd.Quantity)
	}
	ttl, err := h.policy.ResolveTTL(cmd.TTL)
	if err != nil {
		h.metrics.ReserveTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var (
		out     domain.Reservation
		created bool
	)
	err = retry(ctx, "reserve", func() error {
		return h.repo.WithTx(ctx, func(ctx context.Context) error {
			created = false

			if cmd.IdempotencyKey != "" {
				existing, err := h.repo.FindByIdempotencyKey(ctx, key.TenantID, cmd.IdempotencyKey)
				if err != nil {
					return err
				}
				if existing != nil {
					if !existing.SameRequest(key, cmd.Quantity, sessionID) {
						return domain.ErrIdempotencyConflict
					}
					out = *existing
					return nil
				}
			}

			unit, err := h.repo.GetStockUnitForUpdate(ctx, key)
			if err != nil {
				return err
			}

			now := h.clock.Now()
			reserved, err := h.repo.SumActive(ctx, key, now)
			if err != nil {
				return err
			}
			if unit.OnHand-reserved < cmd.Quantity {
				return domain.ErrInsufficientStock
			}

			if err := h.repo.ClaimStockUnit(ctx, unit.ID, unit.Version); err != nil {
				return err
			}

			res := domain.Reservation{
				ID:        uuid.NewString(),
				TenantID:  key.TenantID,
				PieceID:   key.PieceID,
				VariantID: key.VariantID,
				SessionID: sessionID,
				Quantity:  cmd.Quantity,
				Status:    domain.StatusActive,
				CreatedAt: now,
				ExpiresAt: now.Add(ttl),
			}
			if cmd.IdempotencyKey != "" {
				idem := cmd.IdempotencyKey
				res.IdempotencyKey = &idem
			}
			if err := h.repo.CreateReservation(ctx, &res); err != nil {
				return err
			}

			out = res
			created = true
			return nil
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			h.metrics.ReserveTotal.WithLabelValues("insufficient_stock").Inc()
			logger.Info(ctx).
				Str("tenant_id", key.TenantID).
				Str("unit", key.String()).
				Int("quantity", cmd.Quantity).
				Msg("Reserve rejected: insufficient stock")
			return nil, err
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrIdempotencyConflict):
			h.metrics.ReserveTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		h.metrics.ReserveTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	if !created {
		h.metrics.ReserveTotal.WithLabelValues("replayed").Inc()
		return &out, nil
	}

	h.metrics.ReserveTotal.WithLabelValues("reserved").Inc()
	logger.Info(ctx).
		Str("tenant_id", out.TenantID).
		Str("reservation_id", out.ID).
		Str("session_id", out.SessionID).
		Str("unit", key.String()).
		Int("quantity", out.Quantity).
		Time("expires_at", out.ExpiresAt).
		Msg("Stock reserved")
	publish(ctx, h.events, domain.EventReservationCreated, out)

	return &out, nil
}
