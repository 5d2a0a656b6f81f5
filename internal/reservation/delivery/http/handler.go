package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/usecase/command"
	"github.com/tair/stock-reservations/internal/reservation/usecase/query"
	"github.com/tair/stock-reservations/pkg/logger"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReservationHandler handles HTTP requests for stock reservations
type ReservationHandler struct {
	commands command.Handlers
	queries  query.Handlers
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(commands command.Handlers, queries query.Handlers) *ReservationHandler {
	return &ReservationHandler{commands: commands, queries: queries}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type reserveRequest struct {
	PieceID        string `json:"piece_id"`
	VariantID      string `json:"variant_id"`
	SessionID      string `json:"session_id"`
	Quantity       int    `json:"quantity"`
	TTLSeconds     int64  `json:"ttl_seconds"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Reserve handles POST /api/reservations
func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	ttl, err := ttlFromSeconds(req.TTLSeconds)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.commands.Reserve.Handle(r.Context(), command.ReserveCommand{
		TenantID:       TenantFromContext(r.Context()),
		PieceID:        req.PieceID,
		VariantID:      req.VariantID,
		SessionID:      req.SessionID,
		Quantity:       req.Quantity,
		TTL:            ttl,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock reserved",
		Data:    res,
	})
}

// GetReservation handles GET /api/reservations/{id}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.queries.Reservation.Handle(r.Context(), query.GetReservationQuery{
		TenantID:      TenantFromContext(r.Context()),
		ReservationID: mux.Vars(r)["id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    res,
	})
}

// Complete handles POST /api/reservations/{id}/complete
func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	res, err := h.commands.Complete.Handle(r.Context(), command.CompleteCommand{
		TenantID:      TenantFromContext(r.Context()),
		ReservationID: mux.Vars(r)["id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Reservation completed",
		Data:    res,
	})
}

// Cancel handles POST /api/reservations/{id}/cancel
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	res, err := h.commands.Cancel.Handle(r.Context(), command.CancelCommand{
		TenantID:      TenantFromContext(r.Context()),
		ReservationID: mux.Vars(r)["id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Reservation cancelled",
		Data:    res,
	})
}

// GetSessionReservations handles GET /api/sessions/{session_id}/reservations
func (h *ReservationHandler) GetSessionReservations(w http.ResponseWriter, r *http.Request) {
	out, err := h.queries.SessionReservations.Handle(r.Context(), query.GetSessionReservationsQuery{
		TenantID:  TenantFromContext(r.Context()),
		SessionID: mux.Vars(r)["session_id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    out,
	})
}

// CancelSession handles POST /api/sessions/{session_id}/cancel
func (h *ReservationHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.commands.CancelSession.Handle(r.Context(), command.CancelSessionCommand{
		TenantID:  TenantFromContext(r.Context()),
		SessionID: mux.Vars(r)["session_id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Session reservations released",
		Data:    out,
	})
}

// GetStock handles GET /api/stock/{piece_id}/{variant_id}. With ?has=N it
// answers whether N units are available instead.
func (h *ReservationHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantID := TenantFromContext(r.Context())

	if raw := r.URL.Query().Get("has"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid quantity",
			})
			return
		}

		ok, err := h.queries.HasStock.Handle(r.Context(), query.HasStockQuery{
			TenantID:  tenantID,
			PieceID:   vars["piece_id"],
			VariantID: vars["variant_id"],
			Quantity:  qty,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Data: map[string]interface{}{
				"piece_id":   vars["piece_id"],
				"variant_id": vars["variant_id"],
				"requested":  qty,
				"available":  ok,
			},
		})
		return
	}

	availability, err := h.queries.AvailableStock.Handle(r.Context(), query.GetAvailableStockQuery{
		TenantID:  tenantID,
		PieceID:   vars["piece_id"],
		VariantID: vars["variant_id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    availability,
	})
}

// UpdateStock handles PUT /api/stock/{piece_id}/{variant_id}
func (h *ReservationHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OnHand *int `json:"on_hand"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OnHand == nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	vars := mux.Vars(r)
	availability, err := h.commands.UpdateStock.Handle(r.Context(), command.UpdateStockCommand{
		TenantID:  TenantFromContext(r.Context()),
		PieceID:   vars["piece_id"],
		VariantID: vars["variant_id"],
		OnHand:    *req.OnHand,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock updated",
		Data:    availability,
	})
}

// Sweep handles POST /api/admin/sweep
func (h *ReservationHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.commands.SweepExpired.Handle(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sweep finished",
		Data:    map[string]int{"expired": n},
	})
}

// RegisterRoutes registers all reservation routes under /api, behind the
// tenant middleware.
func (h *ReservationHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(TenantMiddleware())

	api.HandleFunc("/reservations", h.Reserve).Methods("POST")
	api.HandleFunc("/reservations/{id}", h.GetReservation).Methods("GET")
	api.HandleFunc("/reservations/{id}/complete", h.Complete).Methods("POST")
	api.HandleFunc("/reservations/{id}/cancel", h.Cancel).Methods("POST")
	api.HandleFunc("/sessions/{session_id}/reservations", h.GetSessionReservations).Methods("GET")
	api.HandleFunc("/sessions/{session_id}/cancel", h.CancelSession).Methods("POST")
	api.HandleFunc("/stock/{piece_id}/{variant_id}", h.GetStock).Methods("GET")
	api.HandleFunc("/stock/{piece_id}/{variant_id}", h.UpdateStock).Methods("PUT")
	api.HandleFunc("/admin/sweep", h.Sweep).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint
func (h *ReservationHandler) RegisterHealthCheck(router *mux.Router, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Reservation service is healthy",
		})
	}).Methods("GET")
}

// ttlFromSeconds rejects values a time.Duration cannot hold instead of
// letting the multiplication wrap.
func ttlFromSeconds(seconds int64) (time.Duration, error) {
	if seconds < 0 || seconds > math.MaxInt64/int64(time.Second) {
		return 0, domain.ErrInvalidTTL
	}
	return time.Duration(seconds) * time.Second, nil
}

// statusFor maps a use-case error to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidTTL),
		errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "Item no longer available in that quantity"
	case errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrAlreadyExpired),
		errors.Is(err, domain.ErrStockBelowReserved):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request timed out, outcome unknown; safe to retry"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	respondJSON(w, status, Response{
		Success: false,
		Error:   msg,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
