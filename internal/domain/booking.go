package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Passenger struct {
	Name       string
	Email      string
	Phone      string
	Passport   string
	Age        int
	SeatNumber string
}

type Booking struct {
	ID          string
	FlightID    string
	UserEmail   string
	Passengers  []Passenger
	SeatNumbers []string
	Seats       int
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeEmail produces the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
