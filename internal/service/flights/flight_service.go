package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	Register(ctx context.Context, id string, payload domain.Flight) (*domain.Flight, error)
	Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error)
	Reserve(ctx context.Context, flightID string, seats int) error
	Release(ctx context.Context, flightID string, seats int) error
	BookedSeats(ctx context.Context, flightID string) ([]string, error)
}

type SearchCache interface {
	GetSearch(ctx context.Context, key string) ([]domain.Flight, error)
	SetSearch(ctx context.Context, key string, flights []domain.Flight) error
}

// FlightService validates flight-level business rules and dispatches to the
// inventory store. It holds no state of its own.
type FlightService struct {
	repo  repository.FlightRepository
	cache SearchCache
}

func NewFlightService(repo repository.FlightRepository, cache SearchCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) Register(ctx context.Context, id string, payload domain.Flight) (*domain.Flight, error) {
	payload.ID = strings.TrimSpace(id)
	if payload.AvailableSeats == 0 {
		payload.AvailableSeats = payload.TotalSeats
	}
	if err := validateFlight(&payload); err != nil {
		return nil, err
	}
	return s.repo.Register(ctx, &payload)
}

func validateFlight(f *domain.Flight) error {
	if f.ID == "" {
		return domain.Validationf("flight id is required")
	}
	from := strings.TrimSpace(f.FromPlace)
	to := strings.TrimSpace(f.ToPlace)
	if from == "" || to == "" {
		return domain.Validationf("origin and destination are required")
	}
	if strings.EqualFold(from, to) {
		return domain.Validationf("origin and destination must differ")
	}
	if f.TotalSeats <= 0 {
		return domain.Validationf("total seats must be > 0")
	}
	if f.AvailableSeats < 0 || f.AvailableSeats > f.TotalSeats {
		return domain.Validationf("available seats must be between 0 and total seats")
	}
	if f.FlightDate.IsZero() {
		return domain.Validationf("flight date is required")
	}
	now := time.Now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if f.FlightDate.Before(today) {
		return domain.Validationf("flight date must not be in the past")
	}
	if f.DepartureTime.IsZero() {
		return domain.Validationf("departure time is required")
	}
	if !f.ArrivalTime.IsZero() && f.ArrivalTime.Before(f.DepartureTime) {
		return domain.Validationf("arrival time must not precede departure time")
	}
	if f.Price <= 0 {
		return domain.Validationf("price must be > 0")
	}
	return nil
}

func (s *FlightService) Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error) {
	key := searchKey(from, to, date)
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, from, to, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, key, flights)
	}
	return flights, nil
}

func searchKey(from, to string, date *time.Time) string {
	day := "any"
	if date != nil {
		day = date.Format("2006-01-02")
	}
	return strings.ToLower(from) + ":" + strings.ToLower(to) + ":" + day
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	return s.repo.ReserveSeats(ctx, flightID, seatNumbers)
}

func (s *FlightService) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	return s.repo.ReleaseSeats(ctx, flightID, seatNumbers)
}

func (s *FlightService) Reserve(ctx context.Context, flightID string, seats int) error {
	return s.repo.Reserve(ctx, flightID, seats)
}

func (s *FlightService) Release(ctx context.Context, flightID string, seats int) error {
	return s.repo.Release(ctx, flightID, seats)
}

func (s *FlightService) BookedSeats(ctx context.Context, flightID string) ([]string, error) {
	return s.repo.BookedSeats(ctx, flightID)
}

var _ FlightUseCase = (*FlightService)(nil)
