package repository

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-reservations/internal/reservation/domain"
)

var tracer = otel.Tracer("reservation-repository")

// TracingReservationRepository wraps a repository with one span per call.
type TracingReservationRepository struct {
	next domain.ReservationRepository
}

// NewTracingReservationRepository creates a new repository with tracing
func NewTracingReservationRepository(next domain.ReservationRepository) *TracingReservationRepository {
	return &TracingReservationRepository{next: next}
}

func (r *TracingReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "repository.WithTx")
	defer span.End()

	err := r.next.WithTx(ctx, fn)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) GetStockUnitForUpdate(ctx context.Context, key domain.UnitKey) (*domain.StockUnit, error) {
	ctx, span := tracer.Start(ctx, "repository.GetStockUnitForUpdate", trace.WithAttributes(unitAttrs(key)...))
	defer span.End()

	unit, err := r.next.GetStockUnitForUpdate(ctx, key)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("stock.on_hand", unit.OnHand),
		attribute.Int64("stock.version", unit.Version),
	)
	return unit, nil
}

func (r *TracingReservationRepository) CreateStockUnit(ctx context.Context, unit *domain.StockUnit) error {
	ctx, span := tracer.Start(ctx, "repository.CreateStockUnit", trace.WithAttributes(unitAttrs(unit.Key())...))
	defer span.End()

	err := r.next.CreateStockUnit(ctx, unit)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) ClaimStockUnit(ctx context.Context, unitID uint, version int64) error {
	ctx, span := tracer.Start(ctx, "repository.ClaimStockUnit",
		trace.WithAttributes(
			attribute.Int64("stock.id", int64(unitID)),
			attribute.Int64("stock.version", version),
		),
	)
	defer span.End()

	err := r.next.ClaimStockUnit(ctx, unitID, version)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) DecrementStock(ctx context.Context, unitID uint, version int64, amount int) error {
	ctx, span := tracer.Start(ctx, "repository.DecrementStock",
		trace.WithAttributes(
			attribute.Int64("stock.id", int64(unitID)),
			attribute.Int64("stock.version", version),
			attribute.Int("stock.amount", amount),
		),
	)
	defer span.End()

	err := r.next.DecrementStock(ctx, unitID, version, amount)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) SetOnHand(ctx context.Context, unitID uint, version int64, onHand int) error {
	ctx, span := tracer.Start(ctx, "repository.SetOnHand",
		trace.WithAttributes(
			attribute.Int64("stock.id", int64(unitID)),
			attribute.Int("stock.on_hand", onHand),
		),
	)
	defer span.End()

	err := r.next.SetOnHand(ctx, unitID, version, onHand)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) GetAvailability(ctx context.Context, key domain.UnitKey, now time.Time) (*domain.Availability, error) {
	ctx, span := tracer.Start(ctx, "repository.GetAvailability", trace.WithAttributes(unitAttrs(key)...))
	defer span.End()

	a, err := r.next.GetAvailability(ctx, key, now)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("stock.on_hand", a.OnHand),
		attribute.Int("stock.reserved", a.Reserved),
	)
	return a, nil
}

func (r *TracingReservationRepository) SumActive(ctx context.Context, key domain.UnitKey, now time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "repository.SumActive", trace.WithAttributes(unitAttrs(key)...))
	defer span.End()

	total, err := r.next.SumActive(ctx, key, now)
	recordError(span, err)
	span.SetAttributes(attribute.Int("stock.reserved", total))
	return total, err
}

func (r *TracingReservationRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	ctx, span := tracer.Start(ctx, "repository.CreateReservation",
		trace.WithAttributes(append(unitAttrs(res.UnitKey()),
			attribute.String("reservation.id", res.ID),
			attribute.Int("reservation.quantity", res.Quantity),
		)...),
	)
	defer span.End()

	err := r.next.CreateReservation(ctx, res)
	recordError(span, err)
	return err
}

func (r *TracingReservationRepository) FindReservation(ctx context.Context, tenantID, id string) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.FindReservation", trace.WithAttributes(reservationAttrs(tenantID, id)...))
	defer span.End()

	res, err := r.next.FindReservation(ctx, tenantID, id)
	recordError(span, err)
	return res, err
}

func (r *TracingReservationRepository) FindReservationForUpdate(ctx context.Context, tenantID, id string) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.FindReservationForUpdate", trace.WithAttributes(reservationAttrs(tenantID, id)...))
	defer span.End()

	res, err := r.next.FindReservationForUpdate(ctx, tenantID, id)
	recordError(span, err)
	return res, err
}

func (r *TracingReservationRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByIdempotencyKey",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	res, err := r.next.FindByIdempotencyKey(ctx, tenantID, key)
	recordError(span, err)
	span.SetAttributes(attribute.Bool("reservation.found", res != nil))
	return res, err
}

func (r *TracingReservationRepository) FindBySession(ctx context.Context, tenantID, sessionID string) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.FindBySession",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	out, err := r.next.FindBySession(ctx, tenantID, sessionID)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, err
}

func (r *TracingReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.TransitionStatus",
		trace.WithAttributes(
			attribute.String("reservation.id", id),
			attribute.String("reservation.from", string(from)),
			attribute.String("reservation.to", string(to)),
		),
	)
	defer span.End()

	changed, err := r.next.TransitionStatus(ctx, id, from, to, at)
	recordError(span, err)
	span.SetAttributes(attribute.Bool("reservation.changed", changed))
	return changed, err
}

func (r *TracingReservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.ListExpired",
		trace.WithAttributes(attribute.Int("query.limit", limit)),
	)
	defer span.End()

	out, err := r.next.ListExpired(ctx, now, limit)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, err
}

func unitAttrs(key domain.UnitKey) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tenant.id", key.TenantID),
		attribute.String("piece.id", key.PieceID),
		attribute.String("variant.id", key.VariantID),
	}
}

func reservationAttrs(tenantID, id string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tenant.id", tenantID),
		attribute.String("reservation.id", id),
	}
}

// recordError marks the span failed. Not-found and lost races are expected
// outcomes and stay unset.
func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrNotFound) || domain.IsRetryable(err) {
		span.SetAttributes(attribute.String("outcome", err.Error()))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
