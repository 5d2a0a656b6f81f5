package domain

import (
	"context"
	"time"
)

// ReservationRepository is the ledger and stock-counter contract. Every
// method participates in the transaction started by WithTx when called with
// the context WithTx hands to its callback.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Stock units
	GetStockUnitForUpdate(ctx context.Context, key UnitKey) (*StockUnit, error)
	CreateStockUnit(ctx context.Context, unit *StockUnit) error
	// ClaimStockUnit bumps the unit version if it still equals version,
	// returning ErrVersionConflict otherwise.
	ClaimStockUnit(ctx context.Context, unitID uint, version int64) error
	// DecrementStock subtracts amount from OnHand under the same version
	// guard, refusing to go below zero.
	DecrementStock(ctx context.Context, unitID uint, version int64, amount int) error
	SetOnHand(ctx context.Context, unitID uint, version int64, onHand int) error
	// GetAvailability reads OnHand and the active, unlapsed reserved sum in
	// a single statement.
	GetAvailability(ctx context.Context, key UnitKey, now time.Time) (*Availability, error)

	// Reservations
	SumActive(ctx context.Context, key UnitKey, now time.Time) (int, error)
	CreateReservation(ctx context.Context, r *Reservation) error
	FindReservation(ctx context.Context, tenantID, id string) (*Reservation, error)
	FindReservationForUpdate(ctx context.Context, tenantID, id string) (*Reservation, error)
	// FindByIdempotencyKey returns nil, nil when no reservation carries key.
	FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*Reservation, error)
	FindBySession(ctx context.Context, tenantID, sessionID string) ([]Reservation, error)
	// TransitionStatus moves id from one status to another only if it is
	// still in from, reporting whether a row changed.
	TransitionStatus(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Reservation, error)
}

// EventType names a reservation lifecycle event.
type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationCompleted EventType = "reservation.completed"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationExpired   EventType = "reservation.expired"
)

// EventPublisher announces committed reservation transitions. Publishing is
// best effort and never part of the storage transaction.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, eventType EventType, r Reservation) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) PublishReservationEvent(context.Context, EventType, Reservation) error {
	return nil
}
