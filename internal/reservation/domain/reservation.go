package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// DefaultVariantID identifies the only variant of a single-variant piece.
const DefaultVariantID = "default"

// UnitKey addresses one StockUnit.
type UnitKey struct {
	TenantID  string
	PieceID   string
	VariantID string
}

// NewUnitKey trims the parts and substitutes DefaultVariantID for an empty
// variant.
func NewUnitKey(tenantID, pieceID, variantID string) UnitKey {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		variantID = DefaultVariantID
	}
	return UnitKey{
		TenantID:  strings.TrimSpace(tenantID),
		PieceID:   strings.TrimSpace(pieceID),
		VariantID: variantID,
	}
}

// Validate rejects keys with missing parts.
func (k UnitKey) Validate() error {
	if k.TenantID == "" || k.PieceID == "" || k.VariantID == "" {
		return ErrInvalidReference
	}
	return nil
}

func (k UnitKey) String() string {
	return k.TenantID + "/" + k.PieceID + "/" + k.VariantID
}

// StockUnit is the on-hand counter for one (tenant, piece, variant). The
// catalogue owns it; reservations only lock it, bump its version and
// decrement OnHand on completion.
type StockUnit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"not null;size:64;uniqueIndex:idx_stock_units_key,priority:1"`
	PieceID   string    `json:"piece_id" gorm:"not null;size:64;uniqueIndex:idx_stock_units_key,priority:2"`
	VariantID string    `json:"variant_id" gorm:"not null;size:64;uniqueIndex:idx_stock_units_key,priority:3"`
	OnHand    int       `json:"on_hand" gorm:"not null"`
	Version   int64     `json:"version" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (StockUnit) TableName() string {
	return "stock_units"
}

func (u StockUnit) Key() UnitKey {
	return UnitKey{TenantID: u.TenantID, PieceID: u.PieceID, VariantID: u.VariantID}
}

// Reservation is a time-limited hold of Quantity units of one StockUnit.
// Rows are never deleted; terminal rows back idempotent Complete/Cancel.
type Reservation struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID       string     `json:"tenant_id" gorm:"not null;size:64;index:idx_reservations_unit_status,priority:1;uniqueIndex:idx_reservations_idempotency,priority:1"`
	PieceID        string     `json:"piece_id" gorm:"not null;size:64;index:idx_reservations_unit_status,priority:2"`
	VariantID      string     `json:"variant_id" gorm:"not null;size:64;index:idx_reservations_unit_status,priority:3"`
	SessionID      string     `json:"session_id" gorm:"not null;size:128;index:idx_reservations_session"`
	IdempotencyKey *string    `json:"idempotency_key,omitempty" gorm:"size:128;uniqueIndex:idx_reservations_idempotency,priority:2"`
	Quantity       int        `json:"quantity" gorm:"not null"`
	Status         Status     `json:"status" gorm:"not null;size:16;index:idx_reservations_unit_status,priority:4;index:idx_reservations_status_expires,priority:1"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"not null;index:idx_reservations_status_expires,priority:2"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt      *time.Time `json:"expired_at,omitempty"`
}

// TableName specifies the table name
func (Reservation) TableName() string {
	return "stock_reservations"
}

func (r Reservation) UnitKey() UnitKey {
	return UnitKey{TenantID: r.TenantID, PieceID: r.PieceID, VariantID: r.VariantID}
}

// IsLapsed reports whether an active hold has passed its expiry at now and
// therefore no longer counts against availability, swept or not.
func (r Reservation) IsLapsed(now time.Time) bool {
	return r.Status == StatusActive && !r.ExpiresAt.After(now)
}

// WithStatus returns a copy moved to status, stamping the matching
// transition time.
func (r Reservation) WithStatus(status Status, at time.Time) Reservation {
	r.Status = status
	switch status {
	case StatusCompleted:
		r.CompletedAt = &at
	case StatusCancelled:
		r.CancelledAt = &at
	case StatusExpired:
		r.ExpiredAt = &at
	}
	return r
}

// SameRequest reports whether a replayed reserve call carries the parameters
// that created r.
func (r Reservation) SameRequest(key UnitKey, quantity int, sessionID string) bool {
	return r.UnitKey() == key && r.Quantity == quantity && r.SessionID == sessionID
}

// Availability is a point-in-time view of one StockUnit.
type Availability struct {
	TenantID  string `json:"tenant_id"`
	PieceID   string `json:"piece_id"`
	VariantID string `json:"variant_id"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}
