//go:build wireinject
// +build wireinject

package reservation

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/config"
)

// InitializeService wires the reservation engine with all dependencies
func InitializeService(db *gorm.DB, cfg config.ReservationConfig, pub domain.EventPublisher, clk clock.Clock, m *metrics.Metrics) (*Service, error) {
	wire.Build(AllSet)
	return nil, nil
}
