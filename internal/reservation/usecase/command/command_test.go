package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	"github.com/tair/stock-reservations/internal/reservation/testutil"
	"github.com/tair/stock-reservations/internal/reservation/usecase/command"
	"github.com/tair/stock-reservations/internal/reservation/usecase/query"
	"github.com/tair/stock-reservations/pkg/clock"
)

var start = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordedEvent struct {
	Type domain.EventType
	ID   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishReservationEvent(_ context.Context, eventType domain.EventType, r domain.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, ID: r.ID})
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	clock     *clock.Manual
	events    *recordingPublisher
	metrics   *metrics.Metrics
	reserve   *command.ReserveHandler
	complete  *command.CompleteHandler
	cancel    *command.CancelHandler
	session   *command.CancelSessionHandler
	stock     *command.UpdateStockHandler
	sweep     *command.SweepExpiredHandler
	available *query.GetAvailableStockHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewTestDB(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	repo := repository.NewGormReservationRepository(db)
	clk := clock.NewManual(start)
	events := &recordingPublisher{}
	m := metrics.New(nil)
	policy := command.Policy{DefaultTTL: 15 * time.Minute, MaxTTL: 2 * time.Hour}

	return &fixture{
		db:        db,
		clock:     clk,
		events:    events,
		metrics:   m,
		reserve:   command.NewReserveHandler(repo, events, clk, policy, m),
		complete:  command.NewCompleteHandler(repo, events, clk, m),
		cancel:    command.NewCancelHandler(repo, events, clk, m),
		session:   command.NewCancelSessionHandler(repo, events, clk, m),
		stock:     command.NewUpdateStockHandler(repo, clk),
		sweep:     command.NewSweepExpiredHandler(repo, events, clk, m, 2),
		available: query.NewGetAvailableStockHandler(repo, clk, m),
	}
}

func (f *fixture) reserveQty(t *testing.T, qty int, ttl time.Duration) (*domain.Reservation, error) {
	t.Helper()
	return f.reserve.Handle(context.Background(), command.ReserveCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-1",
		VariantID: "blue",
		SessionID: "session-1",
		Quantity:  qty,
		TTL:       ttl,
	})
}

func (f *fixture) availableNow(t *testing.T) int {
	t.Helper()
	a, err := f.available.Handle(context.Background(), query.GetAvailableStockQuery{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-1",
		VariantID: "blue",
	})
	require.NoError(t, err)
	return a.Available
}

func (f *fixture) statusOf(t *testing.T, id string) domain.Status {
	t.Helper()
	var res domain.Reservation
	require.NoError(t, f.db.First(&res, "id = ?", id).Error)
	return res.Status
}

func TestReserve_InsufficientStockLeavesAvailabilityUnchanged(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, res.Status)
	assert.True(t, res.ExpiresAt.Equal(start.Add(time.Minute)))
	assert.Equal(t, 2, f.availableNow(t))

	_, err = f.reserveQty(t, 3, time.Minute)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.availableNow(t))

	assert.Equal(t, []domain.EventType{domain.EventReservationCreated}, f.events.types())
}

func TestComplete_ConsumesOnHandAndKeepsAvailability(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 3, time.Minute)
	require.NoError(t, err)

	done, err := f.complete.Handle(context.Background(), command.CompleteCommand{
		TenantID:      testutil.TenantID,
		ReservationID: res.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	assert.Equal(t, 2, testutil.OnHand(t, f.db, "piece-1", "blue"))
	assert.Equal(t, 2, f.availableNow(t))
}

func TestLapsedHoldReleasedBeforeSweep(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 3, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, f.availableNow(t))

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, 5, f.availableNow(t))
	assert.Equal(t, domain.StatusActive, f.statusOf(t, res.ID))

	n, err := f.sweep.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.StatusExpired, f.statusOf(t, res.ID))
	assert.Equal(t, 5, testutil.OnHand(t, f.db, "piece-1", "blue"))
}

func TestCancel_AfterCompleteIsRejected(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 3, time.Minute)
	require.NoError(t, err)
	_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
	require.NoError(t, err)

	_, err = f.cancel.Handle(context.Background(), command.CancelCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Equal(t, 2, testutil.OnHand(t, f.db, "piece-1", "blue"))
	assert.Equal(t, domain.StatusCompleted, f.statusOf(t, res.ID))
}

type concurrencyCase struct {
	onHand, qty, callers int
}

var concurrencyCases = []concurrencyCase{
	{onHand: 10, qty: 3, callers: 8},
	{onHand: 7, qty: 1, callers: 12},
	{onHand: 4, qty: 5, callers: 4},
}

func TestReserve_ConcurrentCallsNeverOversell(t *testing.T) {
	for _, tc := range concurrencyCases {
		assertNoOversell(t, newFixture(t), tc)
	}
}

// TestReserve_ConcurrentCallsNeverOversell_Postgres repeats the race on
// PostgreSQL, where SELECT ... FOR UPDATE blocks competing transactions.
func TestReserve_ConcurrentCallsNeverOversell_Postgres(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	for _, tc := range concurrencyCases {
		testutil.Truncate(t, db)
		assertNoOversell(t, newFixtureOn(t, db), tc)
	}
}

func assertNoOversell(t *testing.T, f *fixture, tc concurrencyCase) {
	t.Helper()
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", tc.onHand)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
		unexpected   []error
	)
	for i := 0; i < tc.callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reserveQty(t, tc.qty, time.Minute)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unexpected)
	want := tc.onHand / tc.qty
	if want > tc.callers {
		want = tc.callers
	}
	assert.Equal(t, want, ok, "onHand=%d qty=%d", tc.onHand, tc.qty)
	assert.Equal(t, tc.callers-want, rejected)
	assert.Equal(t, tc.onHand-want*tc.qty, f.availableNow(t))
}

func TestComplete_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 2, time.Minute)
	require.NoError(t, err)

	cmd := command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID}
	first, err := f.complete.Handle(context.Background(), cmd)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.complete.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusCompleted, second.Status)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))
	assert.Equal(t, 3, testutil.OnHand(t, f.db, "piece-1", "blue"))

	assert.Equal(t, []domain.EventType{
		domain.EventReservationCreated,
		domain.EventReservationCompleted,
	}, f.events.types())
}

func TestCancel_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	res, err := f.reserveQty(t, 2, time.Minute)
	require.NoError(t, err)

	cmd := command.CancelCommand{TenantID: testutil.TenantID, ReservationID: res.ID}
	first, err := f.cancel.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, first.Status)

	second, err := f.cancel.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, second.Status)

	assert.Equal(t, 5, testutil.OnHand(t, f.db, "piece-1", "blue"))
	assert.Equal(t, 5, f.availableNow(t))
	assert.Equal(t, []domain.EventType{
		domain.EventReservationCreated,
		domain.EventReservationCancelled,
	}, f.events.types())
}

func TestComplete_RejectsTerminalAndLapsed(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t)
		testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
		res, err := f.reserveQty(t, 1, time.Minute)
		require.NoError(t, err)
		_, err = f.cancel.Handle(context.Background(), command.CancelCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
		require.NoError(t, err)

		_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
		require.ErrorIs(t, err, domain.ErrAlreadyCancelled)
		assert.Equal(t, 5, testutil.OnHand(t, f.db, "piece-1", "blue"))
	})

	t.Run("swept", func(t *testing.T) {
		f := newFixture(t)
		testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
		res, err := f.reserveQty(t, 1, time.Second)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
		_, err = f.sweep.Handle(context.Background())
		require.NoError(t, err)

		_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
		require.ErrorIs(t, err, domain.ErrAlreadyExpired)
		assert.Equal(t, 5, testutil.OnHand(t, f.db, "piece-1", "blue"))
	})

	t.Run("lapsed but not swept", func(t *testing.T) {
		f := newFixture(t)
		testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
		res, err := f.reserveQty(t, 1, time.Second)
		require.NoError(t, err)
		f.clock.Advance(time.Second)

		_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
		require.ErrorIs(t, err, domain.ErrAlreadyExpired)
		assert.Equal(t, domain.StatusExpired, f.statusOf(t, res.ID))
		assert.Equal(t, 5, testutil.OnHand(t, f.db, "piece-1", "blue"))
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: "missing"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("other tenant", func(t *testing.T) {
		f := newFixture(t)
		testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
		res, err := f.reserveQty(t, 1, time.Minute)
		require.NoError(t, err)

		_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: "tenant-b", ReservationID: res.ID})
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.StatusActive, f.statusOf(t, res.ID))
	})
}

func TestCancel_ExpiredIsRejected(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
	res, err := f.reserveQty(t, 1, time.Second)
	require.NoError(t, err)
	f.clock.Advance(5 * time.Second)

	_, err = f.cancel.Handle(context.Background(), command.CancelCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyExpired)
	assert.Equal(t, domain.StatusExpired, f.statusOf(t, res.ID))

	_, err = f.cancel.Handle(context.Background(), command.CancelCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyExpired)
}

func TestComplete_DetectsCorruption(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)
	res, err := f.reserveQty(t, 4, time.Minute)
	require.NoError(t, err)

	// Out-of-band edit bypassing the engine.
	require.NoError(t, f.db.Model(&domain.StockUnit{}).
		Where("piece_id = ?", "piece-1").
		Update("on_hand", 1).Error)

	_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: res.ID})
	require.ErrorIs(t, err, domain.ErrInventoryCorruption)

	assert.Equal(t, 1, testutil.OnHand(t, f.db, "piece-1", "blue"))
	assert.Equal(t, domain.StatusActive, f.statusOf(t, res.ID))
	assert.Equal(t, 0, f.availableNow(t))
}

func TestReserve_Validation(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	_, err := f.reserveQty(t, 0, time.Minute)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.reserveQty(t, -2, time.Minute)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.reserveQty(t, 1, -time.Second)
	require.ErrorIs(t, err, domain.ErrInvalidTTL)

	_, err = f.reserveQty(t, 1, 3*time.Hour)
	require.ErrorIs(t, err, domain.ErrInvalidTTL)

	_, err = f.reserve.Handle(context.Background(), command.ReserveCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-unknown",
		SessionID: "session-1",
		Quantity:  1,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.reserve.Handle(context.Background(), command.ReserveCommand{
		TenantID: testutil.TenantID,
		PieceID:  "piece-1",
		Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	assert.Equal(t, 5, f.availableNow(t))
}

func TestReserve_DefaultTTLAndVariant(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-2", domain.DefaultVariantID, 1)

	res, err := f.reserve.Handle(context.Background(), command.ReserveCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-2",
		SessionID: "session-1",
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVariantID, res.VariantID)
	assert.True(t, res.ExpiresAt.Equal(start.Add(15*time.Minute)))
}

func TestReserve_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	cmd := command.ReserveCommand{
		TenantID:       testutil.TenantID,
		PieceID:        "piece-1",
		VariantID:      "blue",
		SessionID:      "session-1",
		Quantity:       2,
		TTL:            time.Minute,
		IdempotencyKey: "checkout-42",
	}

	first, err := f.reserve.Handle(context.Background(), cmd)
	require.NoError(t, err)
	second, err := f.reserve.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, f.availableNow(t))

	changed := cmd
	changed.Quantity = 3
	_, err = f.reserve.Handle(context.Background(), changed)
	require.ErrorIs(t, err, domain.ErrIdempotencyConflict)

	_, err = f.cancel.Handle(context.Background(), command.CancelCommand{TenantID: testutil.TenantID, ReservationID: first.ID})
	require.NoError(t, err)
	replay, err := f.reserve.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, domain.StatusCancelled, replay.Status)
	assert.Equal(t, 5, f.availableNow(t))
}

func TestReserve_PublisherFailureDoesNotFailReserve(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 5)

	_, err := f.reserveQty(t, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, f.availableNow(t))
}

func TestCancelSession(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 10)

	a, err := f.reserveQty(t, 1, time.Minute)
	require.NoError(t, err)
	b, err := f.reserveQty(t, 2, time.Minute)
	require.NoError(t, err)
	c, err := f.reserveQty(t, 3, time.Minute)
	require.NoError(t, err)
	_, err = f.complete.Handle(context.Background(), command.CompleteCommand{TenantID: testutil.TenantID, ReservationID: c.ID})
	require.NoError(t, err)

	out, err := f.session.Handle(context.Background(), command.CancelSessionCommand{
		TenantID:  testutil.TenantID,
		SessionID: "session-1",
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	byID := map[string]domain.Status{}
	for _, r := range out {
		byID[r.ID] = r.Status
	}
	assert.Equal(t, domain.StatusCancelled, byID[a.ID])
	assert.Equal(t, domain.StatusCancelled, byID[b.ID])
	assert.Equal(t, domain.StatusCompleted, byID[c.ID])
	assert.Equal(t, 7, testutil.OnHand(t, f.db, "piece-1", "blue"))
	assert.Equal(t, 7, f.availableNow(t))

	again, err := f.session.Handle(context.Background(), command.CancelSessionCommand{
		TenantID:  testutil.TenantID,
		SessionID: "session-1",
	})
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestUpdateStock(t *testing.T) {
	f := newFixture(t)

	created, err := f.stock.Handle(context.Background(), command.UpdateStockCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-1",
		VariantID: "blue",
		OnHand:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, created.Available)

	_, err = f.reserveQty(t, 3, time.Minute)
	require.NoError(t, err)

	_, err = f.stock.Handle(context.Background(), command.UpdateStockCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-1",
		VariantID: "blue",
		OnHand:    2,
	})
	require.ErrorIs(t, err, domain.ErrStockBelowReserved)
	assert.Equal(t, 4, testutil.OnHand(t, f.db, "piece-1", "blue"))

	updated, err := f.stock.Handle(context.Background(), command.UpdateStockCommand{
		TenantID:  testutil.TenantID,
		PieceID:   "piece-1",
		VariantID: "blue",
		OnHand:    9,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Reserved)
	assert.Equal(t, 6, updated.Available)
	assert.Equal(t, 6, f.availableNow(t))

	_, err = f.stock.Handle(context.Background(), command.UpdateStockCommand{
		TenantID: testutil.TenantID,
		PieceID:  "piece-1",
		OnHand:   -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSweep_SkipsTerminalAndRunsInBatches(t *testing.T) {
	f := newFixture(t)
	testutil.InsertStockUnit(t, f.db, "piece-1", "blue", 100)

	var lapsed []string
	for i := 0; i < 5; i++ {
		r := testutil.InsertReservation(t, f.db, domain.Reservation{
			PieceID:   "piece-1",
			VariantID: "blue",
			SessionID: "session-old",
			Quantity:  1,
			Status:    domain.StatusActive,
			ExpiresAt: start.Add(-time.Duration(i+1) * time.Minute),
		})
		lapsed = append(lapsed, r.ID)
	}
	done := testutil.InsertReservation(t, f.db, domain.Reservation{
		PieceID:   "piece-1",
		VariantID: "blue",
		SessionID: "session-old",
		Quantity:  1,
		Status:    domain.StatusCompleted,
		ExpiresAt: start.Add(-time.Hour),
	})
	live := testutil.InsertReservation(t, f.db, domain.Reservation{
		PieceID:   "piece-1",
		VariantID: "blue",
		SessionID: "session-new",
		Quantity:  1,
		Status:    domain.StatusActive,
		ExpiresAt: start.Add(time.Hour),
	})

	n, err := f.sweep.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, id := range lapsed {
		assert.Equal(t, domain.StatusExpired, f.statusOf(t, id))
	}
	assert.Equal(t, domain.StatusCompleted, f.statusOf(t, done.ID))
	assert.Equal(t, domain.StatusActive, f.statusOf(t, live.ID))

	n, err = f.sweep.Handle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPolicy_ResolveTTL(t *testing.T) {
	p := command.Policy{DefaultTTL: 10 * time.Minute, MaxTTL: time.Hour}

	ttl, err := p.ResolveTTL(0)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttl)

	ttl, err = p.ResolveTTL(time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, ttl)

	_, err = p.ResolveTTL(-time.Second)
	assert.ErrorIs(t, err, domain.ErrInvalidTTL)

	_, err = p.ResolveTTL(2 * time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidTTL)
}
