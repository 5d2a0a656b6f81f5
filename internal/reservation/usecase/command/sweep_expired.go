package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/logger"
)

const defaultSweepBatchSize = 500

// SweepExpiredHandler moves lapsed active reservations to expired. It is
// the CleanupExpired operation: rows are retained, never deleted.
type SweepExpiredHandler struct {
	repo      domain.ReservationRepository
	events    domain.EventPublisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	batchSize int
}

// NewSweepExpiredHandler creates a new sweep handler. A non-positive
// batchSize uses the default of 500.
func NewSweepExpiredHandler(repo domain.ReservationRepository, events domain.EventPublisher, clk clock.Clock, m *metrics.Metrics, batchSize int) *SweepExpiredHandler {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &SweepExpiredHandler{repo: repo, events: events, clock: clk, metrics: m, batchSize: batchSize}
}

// Handle expires every reservation that was active with expiresAt before
// the sweep started, and returns how many this call transitioned. Each row
// is updated only if it is still active, so a racing Complete, Cancel or
// another replica's sweep wins without double effects.
func (h *SweepExpiredHandler) Handle(ctx context.Context) (int, error) {
	now := h.clock.Now()
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := h.repo.ListExpired(ctx, now, h.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list expired reservations: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		expired := 0
		for _, res := range batch {
			changed, err := h.repo.TransitionStatus(ctx, res.ID, domain.StatusActive, domain.StatusExpired, now)
			if err != nil {
				return total, fmt.Errorf("failed to expire reservation %s: %w", res.ID, err)
			}
			if !changed {
				continue
			}
			expired++

			out := res.WithStatus(domain.StatusExpired, now)
			h.metrics.TransitionsTotal.WithLabelValues(string(domain.StatusExpired)).Inc()
			publish(ctx, h.events, domain.EventReservationExpired, out)
		}
		total += expired

		// A short batch is the last one. A full batch where nothing changed
		// means another writer owns these rows right now; stop rather than
		// spin on them.
		if len(batch) < h.batchSize || expired == 0 {
			break
		}
	}

	if total > 0 {
		logger.Info(ctx).
			Int("expired", total).
			Time("cutoff", now).
			Msg("Expired reservations swept")
	}

	return total, nil
}
