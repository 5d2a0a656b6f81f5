package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	dbtest "github.com/tair/stock-reservations/internal/reservation/testutil"
	"github.com/tair/stock-reservations/internal/reservation/usecase/command"
	"github.com/tair/stock-reservations/internal/reservation/usecase/query"
	"github.com/tair/stock-reservations/pkg/clock"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type server struct {
	router  *mux.Router
	db      *gorm.DB
	clock   *clock.Manual
	metrics *metrics.Metrics
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := dbtest.NewTestDB(t)
	repo := repository.NewGormReservationRepository(db)
	clk := clock.NewManual(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.New(nil)
	pub := domain.NopPublisher{}

	available := query.NewGetAvailableStockHandler(repo, clk, m)
	h := NewReservationHandler(
		command.Handlers{
			Reserve:       command.NewReserveHandler(repo, pub, clk, command.Policy{DefaultTTL: time.Minute, MaxTTL: time.Hour}, m),
			Complete:      command.NewCompleteHandler(repo, pub, clk, m),
			Cancel:        command.NewCancelHandler(repo, pub, clk, m),
			CancelSession: command.NewCancelSessionHandler(repo, pub, clk, m),
			UpdateStock:   command.NewUpdateStockHandler(repo, clk),
			SweepExpired:  command.NewSweepExpiredHandler(repo, pub, clk, m, 100),
		},
		query.Handlers{
			AvailableStock:      available,
			HasStock:            query.NewHasStockHandler(available),
			SessionReservations: query.NewGetSessionReservationsHandler(repo),
			Reservation:         query.NewGetReservationHandler(repo),
		},
	)

	router := mux.NewRouter()
	cfg := DefaultMiddlewareConfig(m, time.Second)
	cfg.EnableTracing = false
	RegisterMiddlewares(router, cfg)
	h.RegisterRoutes(router)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	h.RegisterHealthCheck(router, sqlDB)

	return &server{router: router, db: db, clock: clk, metrics: m}
}

func (s *server) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TenantHeader, dbtest.TenantID)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPut, "/api/stock/shirt/red", map[string]int{"on_hand": 5})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id":    "shirt",
		"variant_id":  "red",
		"session_id":  "cart-1",
		"quantity":    3,
		"ttl_seconds": 60,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var res domain.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, domain.StatusActive, res.Status)

	code, env = s.do(t, http.MethodGet, "/api/stock/shirt/red", nil)
	require.Equal(t, http.StatusOK, code)
	var a domain.Availability
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, 2, a.Available)

	code, env = s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id":   "shirt",
		"variant_id": "red",
		"session_id": "cart-2",
		"quantity":   3,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = s.do(t, http.MethodGet, "/api/stock/shirt/red?has=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"available":true`)

	code, _ = s.do(t, http.MethodPost, "/api/reservations/"+res.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/reservations/"+res.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, dbtest.OnHand(t, s.db, "shirt", "red"))

	code, env = s.do(t, http.MethodPost, "/api/reservations/"+res.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error, "already completed")

	code, env = s.do(t, http.MethodGet, "/api/sessions/cart-1/reservations", nil)
	require.Equal(t, http.StatusOK, code)
	var list []domain.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusCompleted, list[0].Status)

	code, _ = s.do(t, http.MethodGet, "/api/reservations/"+res.ID, nil)
	assert.Equal(t, http.StatusOK, code)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		s.metrics.RequestCounter.WithLabelValues(http.MethodPost, "/api/reservations", "201")))
}

func TestSessionCancelAndSweepOverHTTP(t *testing.T) {
	s := newServer(t)
	dbtest.InsertStockUnit(t, s.db, "mug", domain.DefaultVariantID, 4)

	for i := 0; i < 2; i++ {
		code, env := s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
			"piece_id":   "mug",
			"session_id": "cart-9",
			"quantity":   1,
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
	}

	code, env := s.do(t, http.MethodPost, "/api/sessions/cart-9/cancel", nil)
	require.Equal(t, http.StatusOK, code)
	var list []domain.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	for _, r := range list {
		assert.Equal(t, domain.StatusCancelled, r.Status)
	}

	code, _ = s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id":    "mug",
		"session_id":  "cart-10",
		"quantity":    4,
		"ttl_seconds": 1,
	})
	require.Equal(t, http.StatusCreated, code)
	s.clock.Advance(2 * time.Second)

	code, env = s.do(t, http.MethodPost, "/api/admin/sweep", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"expired":1}`, string(env.Data))
}

func TestRequestValidation(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/abc", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	code, _ := s.do(t, http.MethodGet, "/api/reservations/abc", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id": "shirt", "session_id": "cart", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id": "unknown", "session_id": "cart", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPut, "/api/stock/shirt/red", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/api/stock/shirt/red?has=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(t, http.MethodPost, "/api/reservations", map[string]interface{}{
		"piece_id": "shirt", "variant_id": "red", "session_id": "cart", "quantity": 1,
		"ttl_seconds": int64(18446744074),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, domain.ErrInvalidTTL.Error())
}

func TestTTLFromSeconds(t *testing.T) {
	maxSeconds := int64(math.MaxInt64 / int64(time.Second))

	tests := []struct {
		name    string
		seconds int64
		want    time.Duration
		wantErr bool
	}{
		{name: "unset", seconds: 0, want: 0},
		{name: "minutes", seconds: 90, want: 90 * time.Second},
		{name: "largest representable", seconds: maxSeconds, want: time.Duration(maxSeconds) * time.Second},
		{name: "wraps past int64", seconds: 18446744074, wantErr: true},
		{name: "one past largest", seconds: maxSeconds + 1, wantErr: true},
		{name: "negative", seconds: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ttlFromSeconds(tt.seconds)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTTL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	router := mux.NewRouter()
	NewReservationHandler(command.Handlers{}, query.Handlers{}).RegisterHealthCheck(router, failingPinger{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("down") }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidQuantity, http.StatusBadRequest},
		{domain.ErrInvalidTTL, http.StatusBadRequest},
		{domain.ErrReservationNotFound, http.StatusNotFound},
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrAlreadyExpired, http.StatusConflict},
		{domain.ErrIdempotencyConflict, http.StatusUnprocessableEntity},
		{domain.ErrInventoryCorruption, http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("db gone"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
