package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrNotFound            = errors.New("not found")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidTTL          = errors.New("invalid ttl")
	ErrInvalidReference    = errors.New("tenant, piece, variant and session are required")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrAlreadyCompleted    = errors.New("reservation already completed")
	ErrAlreadyExpired      = errors.New("reservation already expired")
	ErrInventoryCorruption = errors.New("inventory corruption")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")
	ErrStockBelowReserved  = errors.New("on-hand stock below active reservations")

	// ErrVersionConflict and ErrDuplicateKey are storage-level races; use
	// cases retry them and never surface them unless retries run out.
	ErrVersionConflict = errors.New("concurrent update")
	ErrDuplicateKey    = errors.New("duplicate key")
)

var (
	ErrStockUnitNotFound   = fmt.Errorf("stock unit %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
)

// IsRetryable reports whether err is a lost race that a fresh attempt can
// resolve.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrDuplicateKey)
}
