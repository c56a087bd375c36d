package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type FlightRepository interface {
	Register(ctx context.Context, flight *domain.Flight) (*domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error)
	Reserve(ctx context.Context, flightID string, seats int) error
	Release(ctx context.Context, flightID string, seats int) error
	BookedSeats(ctx context.Context, flightID string) ([]string, error)
}

// MemoryFlightRepository keeps one entry per flight, each with its own lock,
// so reservations on different flights never contend. Every reserve/release
// is a single read-modify-write under the flight's lock.
type MemoryFlightRepository struct {
	mu      sync.RWMutex
	flights map[string]*flightEntry
}

type flightEntry struct {
	mu     sync.Mutex
	flight domain.Flight
	booked map[string]struct{}
}

func NewMemoryFlightRepository() *MemoryFlightRepository {
	return &MemoryFlightRepository{flights: make(map[string]*flightEntry)}
}

func (r *MemoryFlightRepository) Register(ctx context.Context, flight *domain.Flight) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flights[flight.ID]; ok {
		return nil, domain.ErrFlightExists
	}

	now := time.Now()
	f := *flight
	f.CreatedAt = now
	f.UpdatedAt = now

	entry := &flightEntry{flight: f, booked: make(map[string]struct{}, len(f.BookedSeats))}
	for _, s := range f.BookedSeats {
		entry.booked[s] = struct{}{}
	}
	r.flights[flight.ID] = entry

	out := entry.snapshot()
	return &out, nil
}

func (r *MemoryFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	f := entry.snapshot()
	return &f, nil
}

func (r *MemoryFlightRepository) Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error) {
	r.mu.RLock()
	entries := make([]*flightEntry, 0, len(r.flights))
	for _, e := range r.flights {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	now := time.Now()
	results := make([]domain.Flight, 0)
	for _, e := range entries {
		e.mu.Lock()
		f := e.snapshot()
		e.mu.Unlock()

		if !strings.EqualFold(f.FromPlace, from) || !strings.EqualFold(f.ToPlace, to) {
			continue
		}
		if f.Departed(now) {
			continue
		}
		if date != nil && !sameDate(f.FlightDate, *date) {
			continue
		}
		results = append(results, f)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DepartureTime.Before(results[j].DepartureTime) })
	return results, nil
}

func (r *MemoryFlightRepository) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	entry, err := r.entry(flightID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if len(seatNumbers) == 0 {
		return domain.Validationf("no seats requested")
	}
	requested := make([]string, 0, len(seatNumbers))
	for _, s := range seatNumbers {
		s = strings.TrimSpace(s)
		if s == "" {
			return domain.Validationf("seat number must not be blank")
		}
		requested = append(requested, s)
	}

	if entry.flight.Departed(time.Now()) {
		return domain.ErrFlightDeparted
	}

	// Any collision rejects the whole batch; nothing is applied partially.
	seen := make(map[string]struct{}, len(requested))
	for _, s := range requested {
		if _, dup := seen[s]; dup {
			return &domain.SeatTakenError{FlightID: flightID, SeatNumber: s}
		}
		seen[s] = struct{}{}
		if _, taken := entry.booked[s]; taken {
			return &domain.SeatTakenError{FlightID: flightID, SeatNumber: s}
		}
	}
	if len(requested) > entry.flight.AvailableSeats {
		return domain.ErrNotEnoughSeats
	}

	for _, s := range requested {
		entry.booked[s] = struct{}{}
	}
	entry.flight.AvailableSeats -= len(requested)
	entry.flight.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryFlightRepository) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	entry, err := r.entry(flightID)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	released := 0
	for _, s := range seatNumbers {
		s = strings.TrimSpace(s)
		if _, ok := entry.booked[s]; ok {
			delete(entry.booked, s)
			released++
		}
	}
	if released > 0 {
		entry.flight.AvailableSeats = min(entry.flight.TotalSeats, entry.flight.AvailableSeats+released)
		entry.flight.UpdatedAt = time.Now()
	}
	return released, nil
}

func (r *MemoryFlightRepository) Reserve(ctx context.Context, flightID string, seats int) error {
	entry, err := r.entry(flightID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if seats <= 0 {
		return domain.Validationf("seats must be > 0")
	}
	if entry.flight.Departed(time.Now()) {
		return domain.ErrFlightDeparted
	}
	if entry.flight.AvailableSeats < seats {
		return domain.ErrNotEnoughSeats
	}
	entry.flight.AvailableSeats -= seats
	entry.flight.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryFlightRepository) Release(ctx context.Context, flightID string, seats int) error {
	entry, err := r.entry(flightID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if seats <= 0 {
		return domain.Validationf("seats must be > 0")
	}
	entry.flight.AvailableSeats = min(entry.flight.TotalSeats, entry.flight.AvailableSeats+seats)
	entry.flight.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryFlightRepository) BookedSeats(ctx context.Context, flightID string) ([]string, error) {
	entry, err := r.entry(flightID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	seats := make([]string, 0, len(entry.booked))
	for s := range entry.booked {
		seats = append(seats, s)
	}
	sort.Strings(seats)
	return seats, nil
}

func (r *MemoryFlightRepository) entry(id string) (*flightEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return entry, nil
}

// snapshot copies the record with the booked set materialized; callers must
// hold the entry lock.
func (e *flightEntry) snapshot() domain.Flight {
	f := e.flight
	f.BookedSeats = make([]string, 0, len(e.booked))
	for s := range e.booked {
		f.BookedSeats = append(f.BookedSeats, s)
	}
	sort.Strings(f.BookedSeats)
	return f
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var _ FlightRepository = (*MemoryFlightRepository)(nil)
