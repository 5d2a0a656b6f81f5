package http

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router) {
	router.PathPrefix("/swagger/").Handler(SwaggerHandler())
}

// SwaggerHandler serves the Swagger UI backed by the registered doc.json.
func SwaggerHandler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	)
}

// Reserve godoc
// @Summary Reserve stock
// @Description Hold quantity units of a piece variant for a checkout session until the TTL lapses
// @Tags Reservations
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param Idempotency-Key header string false "Replay key"
// @Param request body object{piece_id=string,variant_id=string,session_id=string,quantity=int,ttl_seconds=int,idempotency_key=string} true "Reservation request"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string}
// @Router /api/reservations [post]
func (h *ReservationHandler) ReserveDoc() {}

// GetReservation godoc
// @Summary Get reservation by ID
// @Tags Reservations
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservationDoc() {}

// Complete godoc
// @Summary Complete reservation
// @Description Convert the hold into a sale, decrementing on-hand stock. Idempotent.
// @Tags Reservations
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/reservations/{id}/complete [post]
func (h *ReservationHandler) CompleteDoc() {}

// Cancel godoc
// @Summary Cancel reservation
// @Description Release the hold without touching on-hand stock. Idempotent.
// @Tags Reservations
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelDoc() {}

// GetSessionReservations godoc
// @Summary List session reservations
// @Tags Sessions
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param session_id path string true "Session ID"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/sessions/{session_id}/reservations [get]
func (h *ReservationHandler) GetSessionReservationsDoc() {}

// CancelSession godoc
// @Summary Cancel every active reservation of a session
// @Tags Sessions
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param session_id path string true "Session ID"
// @Success 200 {object} object{success=bool,message=string,data=array}
// @Router /api/sessions/{session_id}/cancel [post]
func (h *ReservationHandler) CancelSessionDoc() {}

// GetStock godoc
// @Summary Get available stock
// @Description On-hand minus active, unexpired holds. With has=N, reports whether N units are available.
// @Tags Stock
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param piece_id path string true "Piece ID"
// @Param variant_id path string true "Variant ID"
// @Param has query int false "Requested quantity"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/stock/{piece_id}/{variant_id} [get]
func (h *ReservationHandler) GetStockDoc() {}

// UpdateStock godoc
// @Summary Set on-hand stock
// @Description Administrative stock edit; rejected below the quantity held by active reservations
// @Tags Stock
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param piece_id path string true "Piece ID"
// @Param variant_id path string true "Variant ID"
// @Param request body object{on_hand=int} true "Stock level"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/stock/{piece_id}/{variant_id} [put]
func (h *ReservationHandler) UpdateStockDoc() {}

// Sweep godoc
// @Summary Run the expiry sweep now
// @Tags Admin
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Success 200 {object} object{success=bool,message=string,data=object{expired=int}}
// @Router /api/admin/sweep [post]
func (h *ReservationHandler) SweepDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *ReservationHandler) HealthCheckDoc() {}
