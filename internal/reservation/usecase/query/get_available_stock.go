package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

// GetAvailableStockQuery represents the query for sellable stock of a unit
type GetAvailableStockQuery struct {
	TenantID  string
	PieceID   string
	VariantID string
}

// GetAvailableStockHandler handles get available stock query
type GetAvailableStockHandler struct {
	repo    domain.ReservationRepository
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewGetAvailableStockHandler creates a new get available stock handler
func NewGetAvailableStockHandler(repo domain.ReservationRepository, clk clock.Clock, m *metrics.Metrics) *GetAvailableStockHandler {
	return &GetAvailableStockHandler{repo: repo, clock: clk, metrics: m}
}

// Handle returns onHand minus the active holds that have not lapsed as of
// now. Lapsed holds count as released whether or not the sweeper has run.
func (h *GetAvailableStockHandler) Handle(ctx context.Context, query GetAvailableStockQuery) (*domain.Availability, error) {
	key := domain.NewUnitKey(query.TenantID, query.PieceID, query.VariantID)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	availability, err := h.repo.GetAvailability(ctx, key, h.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get available stock: %w", err)
	}

	if availability.Available < 0 {
		logger.Alert(ctx).
			Str("unit", key.String()).
			Int("on_hand", availability.OnHand).
			Int("reserved", availability.Reserved).
			Msg("Inventory corruption: active holds exceed on-hand stock")
		h.metrics.CorruptionTotal.Inc()
		availability.Available = 0
	}

	return availability, nil
}

// HasStockQuery asks whether Quantity units can be sold right now
type HasStockQuery struct {
	TenantID  string
	PieceID   string
	VariantID string
	Quantity  int
}

// HasStockHandler handles has stock query
type HasStockHandler struct {
	available *GetAvailableStockHandler
}

// NewHasStockHandler creates a new has stock handler
func NewHasStockHandler(available *GetAvailableStockHandler) *HasStockHandler {
	return &HasStockHandler{available: available}
}

// Handle executes the has stock query
func (h *HasStockHandler) Handle(ctx context.Context, query HasStockQuery) (bool, error) {
	if query.Quantity <= 0 {
		return false, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, query.Quantity)
	}

	availability, err := h.available.Handle(ctx, GetAvailableStockQuery{
		TenantID:  query.TenantID,
		PieceID:   query.PieceID,
		VariantID: query.VariantID,
	})
	if err != nil {
		return false, err
	}

	return availability.Available >= query.Quantity, nil
}
