package reservation

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/delivery/events"
	httpDelivery "github.com/tair/stock-reservations/internal/reservation/delivery/http"
	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	"github.com/tair/stock-reservations/internal/reservation/usecase/command"
	"github.com/tair/stock-reservations/internal/reservation/usecase/query"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/config"
)

// Service is the assembled reservation engine and its delivery adapters.
type Service struct {
	Commands command.Handlers
	Queries  query.Handlers
	HTTP     *httpDelivery.ReservationHandler
	Checkout *events.CheckoutHandler
}

// NewService creates a new service
func NewService(commands command.Handlers, queries query.Handlers, h *httpDelivery.ReservationHandler, checkout *events.CheckoutHandler) *Service {
	return &Service{Commands: commands, Queries: queries, HTTP: h, Checkout: checkout}
}

// ProvideReservationRepository provides the traced reservation repository
func ProvideReservationRepository(db *gorm.DB) domain.ReservationRepository {
	return repository.NewTracingReservationRepository(repository.NewGormReservationRepository(db))
}

// ProvidePolicy provides the TTL policy
func ProvidePolicy(cfg config.ReservationConfig) command.Policy {
	return command.Policy{DefaultTTL: cfg.DefaultTTL, MaxTTL: cfg.MaxTTL}
}

// ProvideSweepExpiredHandler provides the sweep handler with the configured batch size
func ProvideSweepExpiredHandler(repo domain.ReservationRepository, pub domain.EventPublisher, clk clock.Clock, m *metrics.Metrics, cfg config.ReservationConfig) *command.SweepExpiredHandler {
	return command.NewSweepExpiredHandler(repo, pub, clk, m, cfg.SweepBatchSize)
}

// ProvideCommandHandlers groups the command handlers
func ProvideCommandHandlers(
	reserve *command.ReserveHandler,
	complete *command.CompleteHandler,
	cancel *command.CancelHandler,
	cancelSession *command.CancelSessionHandler,
	updateStock *command.UpdateStockHandler,
	sweep *command.SweepExpiredHandler,
) command.Handlers {
	return command.Handlers{
		Reserve:       reserve,
		Complete:      complete,
		Cancel:        cancel,
		CancelSession: cancelSession,
		UpdateStock:   updateStock,
		SweepExpired:  sweep,
	}
}

// ProvideQueryHandlers groups the query handlers
func ProvideQueryHandlers(
	available *query.GetAvailableStockHandler,
	hasStock *query.HasStockHandler,
	session *query.GetSessionReservationsHandler,
	reservation *query.GetReservationHandler,
) query.Handlers {
	return query.Handlers{
		AvailableStock:      available,
		HasStock:            hasStock,
		SessionReservations: session,
		Reservation:         reservation,
	}
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideReservationRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvidePolicy,
	command.NewReserveHandler,
	command.NewCompleteHandler,
	command.NewCancelHandler,
	command.NewCancelSessionHandler,
	command.NewUpdateStockHandler,
	ProvideSweepExpiredHandler,
	ProvideCommandHandlers,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetAvailableStockHandler,
	query.NewHasStockHandler,
	query.NewGetSessionReservationsHandler,
	query.NewGetReservationHandler,
	ProvideQueryHandlers,
)

var DeliverySet = wire.NewSet(
	httpDelivery.NewReservationHandler,
	events.NewCheckoutHandler,
)

var AllSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
	DeliverySet,
	NewService,
)
