package kafka

import "time"

// ReservationEvent is published on every committed reservation transition
type ReservationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	TenantID      string    `json:"tenant_id"`
	PieceID       string    `json:"piece_id"`
	VariantID     string    `json:"variant_id"`
	SessionID     string    `json:"session_id"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// CheckoutOutcomeEvent is emitted by the checkout flow once a session ends
type CheckoutOutcomeEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	TenantID       string    `json:"tenant_id"`
	SessionID      string    `json:"session_id"`
	ReservationIDs []string  `json:"reservation_ids,omitempty"`
	OrderID        string    `json:"order_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypePaymentSucceeded  = "checkout.payment_succeeded"
	EventTypeCheckoutAbandoned = "checkout.abandoned"
)

// Kafka topics
const (
	TopicStockReservations = "stock-reservations"
	TopicCheckoutOutcomes  = "checkout-outcomes"
)

// Header keys
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)
