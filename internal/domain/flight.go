package domain

import "time"

type Flight struct {
	ID             string
	FromPlace      string
	ToPlace        string
	TotalSeats     int
	AvailableSeats int
	BookedSeats    []string
	FlightDate     time.Time
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Price          float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Departed reports whether the flight can no longer be operated on.
// The departure timestamp wins when set; otherwise the flight date alone
// decides (a flight dated yesterday is gone even without a timetable).
func (f *Flight) Departed(now time.Time) bool {
	if !f.DepartureTime.IsZero() {
		return f.DepartureTime.Before(now)
	}
	if f.FlightDate.IsZero() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return f.FlightDate.Before(today)
}
