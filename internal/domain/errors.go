package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrFlightDeparted  = errors.New("flight has already departed")
	ErrFlightExists    = errors.New("flight already exists")

	// ErrSeatConflict is the category for every reservation rejection the
	// caller can fix by re-querying availability.
	ErrSeatConflict   = errors.New("seat conflict")
	ErrNotEnoughSeats = fmt.Errorf("not enough seats available: %w", ErrSeatConflict)

	// ErrFlightUnavailable is the uniform circuit-breaker fallback: the
	// remote inventory could not be reached or refused to answer.
	ErrFlightUnavailable = errors.New("flight service unavailable")
)

// ValidationError rejects malformed client input before any remote call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// SeatTakenError reports a seat already present in the booked set. The whole
// request the seat belonged to was rejected, nothing was applied.
type SeatTakenError struct {
	FlightID   string
	SeatNumber string
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %s is already booked on flight %s", e.SeatNumber, e.FlightID)
}

func (e *SeatTakenError) Unwrap() error { return ErrSeatConflict }

// CancellationWindowError means the booking may no longer be cancelled
// because departure is closer than the configured window.
type CancellationWindowError struct {
	Window    time.Duration
	Remaining time.Duration
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("cancellation is closed within %v of departure: %d hours remaining",
		e.Window, e.HoursRemaining())
}

func (e *CancellationWindowError) HoursRemaining() int {
	if e.Remaining < 0 {
		return 0
	}
	return int(e.Remaining / time.Hour)
}

// PublishError marks a booking state change that committed but whose
// lifecycle event may not have been enqueued. The booking itself stands.
type PublishError struct {
	BookingID string
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("booking %s committed but event publish failed: %v", e.BookingID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
