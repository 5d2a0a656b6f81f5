package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	dbtest "github.com/tair/stock-reservations/internal/reservation/testutil"
	"github.com/tair/stock-reservations/internal/reservation/usecase/query"
	"github.com/tair/stock-reservations/pkg/clock"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGetAvailableStock(t *testing.T) {
	db := dbtest.NewTestDB(t)
	repo := repository.NewGormReservationRepository(db)
	clk := clock.NewManual(now)
	handler := query.NewGetAvailableStockHandler(repo, clk, metrics.New(nil))
	has := query.NewHasStockHandler(handler)
	ctx := context.Background()

	dbtest.InsertStockUnit(t, db, "p1", domain.DefaultVariantID, 5)
	dbtest.InsertReservation(t, db, domain.Reservation{
		PieceID: "p1", VariantID: domain.DefaultVariantID, SessionID: "s1", Quantity: 3,
		Status: domain.StatusActive, ExpiresAt: now.Add(time.Second),
	})

	a, err := handler.Handle(ctx, query.GetAvailableStockQuery{TenantID: dbtest.TenantID, PieceID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Available)
	assert.Equal(t, 3, a.Reserved)

	ok, err := has.Handle(ctx, query.HasStockQuery{TenantID: dbtest.TenantID, PieceID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = has.Handle(ctx, query.HasStockQuery{TenantID: dbtest.TenantID, PieceID: "p1", Quantity: 3})
	require.NoError(t, err)
	assert.False(t, ok)

	clk.Advance(2 * time.Second)
	a, err = handler.Handle(ctx, query.GetAvailableStockQuery{TenantID: dbtest.TenantID, PieceID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 5, a.Available)

	_, err = has.Handle(ctx, query.HasStockQuery{TenantID: dbtest.TenantID, PieceID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = handler.Handle(ctx, query.GetAvailableStockQuery{TenantID: dbtest.TenantID, PieceID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = handler.Handle(ctx, query.GetAvailableStockQuery{PieceID: "p1"})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestGetAvailableStock_ClampsCorruptedUnitToZero(t *testing.T) {
	db := dbtest.NewTestDB(t)
	m := metrics.New(nil)
	handler := query.NewGetAvailableStockHandler(repository.NewGormReservationRepository(db), clock.NewManual(now), m)

	dbtest.InsertStockUnit(t, db, "p1", "v1", 1)
	dbtest.InsertReservation(t, db, domain.Reservation{
		PieceID: "p1", VariantID: "v1", SessionID: "s1", Quantity: 4,
		Status: domain.StatusActive, ExpiresAt: now.Add(time.Minute),
	})

	a, err := handler.Handle(context.Background(), query.GetAvailableStockQuery{TenantID: dbtest.TenantID, PieceID: "p1", VariantID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, 0, a.Available)
	assert.Equal(t, 4, a.Reserved)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CorruptionTotal))
}

func TestGetSessionReservations(t *testing.T) {
	db := dbtest.NewTestDB(t)
	repo := repository.NewGormReservationRepository(db)
	handler := query.NewGetSessionReservationsHandler(repo)
	ctx := context.Background()

	dbtest.InsertReservation(t, db, domain.Reservation{
		PieceID: "p1", VariantID: "v1", SessionID: "s1", Quantity: 1,
		Status: domain.StatusActive, ExpiresAt: now.Add(time.Minute),
	})
	dbtest.InsertReservation(t, db, domain.Reservation{
		PieceID: "p2", VariantID: "v1", SessionID: "s1", Quantity: 2,
		Status: domain.StatusCompleted, ExpiresAt: now.Add(time.Minute),
	})

	out, err := handler.Handle(ctx, query.GetSessionReservationsQuery{TenantID: dbtest.TenantID, SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	empty, err := handler.Handle(ctx, query.GetSessionReservationsQuery{TenantID: dbtest.TenantID, SessionID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = handler.Handle(ctx, query.GetSessionReservationsQuery{TenantID: dbtest.TenantID})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestGetReservation(t *testing.T) {
	db := dbtest.NewTestDB(t)
	handler := query.NewGetReservationHandler(repository.NewGormReservationRepository(db))

	res := dbtest.InsertReservation(t, db, domain.Reservation{
		PieceID: "p1", VariantID: "v1", SessionID: "s1", Quantity: 1,
		Status: domain.StatusActive, ExpiresAt: now.Add(time.Minute),
	})

	got, err := handler.Handle(context.Background(), query.GetReservationQuery{TenantID: dbtest.TenantID, ReservationID: res.ID})
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "s1", got.SessionID)

	_, err = handler.Handle(context.Background(), query.GetReservationQuery{TenantID: "tenant-b", ReservationID: res.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
