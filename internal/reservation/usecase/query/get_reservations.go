package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/stock-reservations/internal/reservation/domain"
)

// GetSessionReservationsQuery represents the query for a session's holds
type GetSessionReservationsQuery struct {
	TenantID  string
	SessionID string
}

// GetSessionReservationsHandler handles get session reservations query
type GetSessionReservationsHandler struct {
	repo domain.ReservationRepository
}

// NewGetSessionReservationsHandler creates a new get session reservations handler
func NewGetSessionReservationsHandler(repo domain.ReservationRepository) *GetSessionReservationsHandler {
	return &GetSessionReservationsHandler{repo: repo}
}

// Handle returns every reservation of the session in creation order,
// whatever its status. An unknown session yields an empty slice.
func (h *GetSessionReservationsHandler) Handle(ctx context.Context, query GetSessionReservationsQuery) ([]domain.Reservation, error) {
	tenantID := strings.TrimSpace(query.TenantID)
	sessionID := strings.TrimSpace(query.SessionID)
	if tenantID == "" || sessionID == "" {
		return nil, domain.ErrInvalidReference
	}

	reservations, err := h.repo.FindBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session reservations: %w", err)
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}

	return reservations, nil
}

// GetReservationQuery represents the query to get a reservation
type GetReservationQuery struct {
	TenantID      string
	ReservationID string
}

// GetReservationHandler handles get reservation query
type GetReservationHandler struct {
	repo domain.ReservationRepository
}

// NewGetReservationHandler creates a new get reservation handler
func NewGetReservationHandler(repo domain.ReservationRepository) *GetReservationHandler {
	return &GetReservationHandler{repo: repo}
}

// Handle executes the get reservation query
func (h *GetReservationHandler) Handle(ctx context.Context, query GetReservationQuery) (*domain.Reservation, error) {
	tenantID := strings.TrimSpace(query.TenantID)
	id := strings.TrimSpace(query.ReservationID)
	if tenantID == "" || id == "" {
		return nil, domain.ErrReservationNotFound
	}

	res, err := h.repo.FindReservation(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return res, nil
}
