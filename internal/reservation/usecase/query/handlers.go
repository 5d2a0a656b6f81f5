package query

// Handlers groups the read-side use cases.
type Handlers struct {
	AvailableStock      *GetAvailableStockHandler
	HasStock            *HasStockHandler
	SessionReservations *GetSessionReservationsHandler
	Reservation         *GetReservationHandler
}
