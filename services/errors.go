package services

import (
	"errors"
	"fmt"
)

// Service-level errors. Controllers map these to HTTP statuses with
// errors.Is / errors.As instead of string matching.
var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidRange       = errors.New("invalid_range")
	ErrBookingNotFound    = errors.New("booking_not_found")
	ErrVehicleNotFound    = errors.New("vehicle_not_found")
	ErrExtraNotFound      = errors.New("extra_not_found")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrVehicleUnavailable = errors.New("vehicle_unavailable")
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrResourceConflict   = errors.New("resource_conflict")
	ErrPaymentNotCaptured = errors.New("payment_not_captured")
)

// ExtraUnavailableError reports which extra fell short and by how
// much, so the caller can act on it.
type ExtraUnavailableError struct {
	ExtraID   uint
	ExtraName string
	Requested int
	Available int
}

func (e *ExtraUnavailableError) Error() string {
	return fmt.Sprintf("extra_unavailable: extra %d (%s) requested %d, available %d",
		e.ExtraID, e.ExtraName, e.Requested, e.Available)
}
