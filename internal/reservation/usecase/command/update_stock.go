package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

// UpdateStockCommand represents the command to set a unit's on-hand count
type UpdateStockCommand struct {
	TenantID  string
	PieceID   string
	VariantID string
	OnHand    int
}

// UpdateStockHandler handles update stock command
type UpdateStockHandler struct {
	repo  domain.ReservationRepository
	clock clock.Clock
}

// NewUpdateStockHandler creates a new update stock handler
func NewUpdateStockHandler(repo domain.ReservationRepository, clk clock.Clock) *UpdateStockHandler {
	return &UpdateStockHandler{repo: repo, clock: clk}
}

// Handle creates the unit if it does not exist, otherwise overwrites OnHand
// under the unit lock. The new count may not drop below what active holds
// already claim.
func (h *UpdateStockHandler) Handle(ctx context.Context, cmd UpdateStockCommand) (*domain.Availability, error) {
	key := domain.NewUnitKey(cmd.TenantID, cmd.PieceID, cmd.VariantID)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if cmd.OnHand < 0 {
		return nil, fmt.Errorf("%w: on-hand cannot be negative", domain.ErrInvalidQuantity)
	}

	var out *domain.Availability
	err := retry(ctx, "update stock", func() error {
		return h.repo.WithTx(ctx, func(ctx context.Context) error {
			unit, err := h.repo.GetStockUnitForUpdate(ctx, key)
			if errors.Is(err, domain.ErrNotFound) {
				unit = &domain.StockUnit{
					TenantID:  key.TenantID,
					PieceID:   key.PieceID,
					VariantID: key.VariantID,
					OnHand:    cmd.OnHand,
				}
				if err := h.repo.CreateStockUnit(ctx, unit); err != nil {
					return err
				}
				out = &domain.Availability{
					TenantID:  key.TenantID,
					PieceID:   key.PieceID,
					VariantID: key.VariantID,
					OnHand:    cmd.OnHand,
					Available: cmd.OnHand,
				}
				return nil
			}
			if err != nil {
				return err
			}

			now := h.clock.Now()
			reserved, err := h.repo.SumActive(ctx, key, now)
			if err != nil {
				return err
			}
			if cmd.OnHand < reserved {
				return fmt.Errorf("%w: %d held, %d requested", domain.ErrStockBelowReserved, reserved, cmd.OnHand)
			}
			if err := h.repo.SetOnHand(ctx, unit.ID, unit.Version, cmd.OnHand); err != nil {
				return err
			}

			out = &domain.Availability{
				TenantID:  key.TenantID,
				PieceID:   key.PieceID,
				VariantID: key.VariantID,
				OnHand:    cmd.OnHand,
				Reserved:  reserved,
				Available: cmd.OnHand - reserved,
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrStockBelowReserved) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	logger.Info(ctx).
		Str("tenant_id", key.TenantID).
		Str("unit", key.String()).
		Int("on_hand", out.OnHand).
		Int("reserved", out.Reserved).
		Msg("Stock level updated")

	return out, nil
}
