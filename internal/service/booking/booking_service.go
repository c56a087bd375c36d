package booking

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/flightclient"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, userEmail string) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookingService drives the reserve-then-persist saga: seats are reserved on
// the remote inventory first, the ledger record is written only after that
// succeeded, and a persist failure triggers a compensating release so seats
// never stay blocked without a booking behind them.
//
// Calls are not retried here and duplicate creation requests are not
// deduplicated; a caller that retries after a timeout may end up with two
// bookings for one trip.
type BookingService struct {
	bookings           repository.BookingRepository
	flights            flightclient.Client
	producer           Producer
	createdTopic       string
	cancelledTopic     string
	cancellationWindow time.Duration
}

type CreateBookingInput struct {
	FlightID   string           `json:"flight_id"`
	UserEmail  string           `json:"user_email"`
	Seats      int              `json:"seats"`
	Passengers []PassengerInput `json:"passengers"`
}

type PassengerInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Passport   string `json:"passport"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number"`
}

type BookingServiceOption func(*BookingService)

func WithCancellationWindow(window time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cancellationWindow = window
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights flightclient.Client,
	producer Producer,
	createdTopic, cancelledTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:           bookings,
		flights:            flights,
		producer:           producer,
		createdTopic:       createdTopic,
		cancelledTopic:     cancelledTopic,
		cancellationWindow: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	seatNumbers, err := validateCreateInput(&input)
	if err != nil {
		return nil, err
	}
	userEmail := domain.NormalizeEmail(input.UserEmail)

	flight, err := s.flights.GetFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.Departed(time.Now()) {
		return nil, domain.ErrFlightDeparted
	}

	if len(seatNumbers) > 0 {
		err = s.flights.ReserveSeats(ctx, input.FlightID, seatNumbers)
	} else {
		err = s.flights.Reserve(ctx, input.FlightID, input.Seats)
	}
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		FlightID:    input.FlightID,
		UserEmail:   userEmail,
		Passengers:  toPassengers(input.Passengers),
		SeatNumbers: seatNumbers,
		Seats:       input.Seats,
		Status:      domain.BookingStatusConfirmed,
		CreatedAt:   time.Now(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// Compensate: the seats were taken on the inventory side but no
		// booking exists, give them back before surfacing the failure.
		s.releaseSeats(ctx, booking)
		return nil, err
	}

	if err := s.publish(ctx, s.createdTopic, booking); err != nil {
		return booking, &domain.PublishError{BookingID: booking.ID, Err: err}
	}
	return booking, nil
}

// validateCreateInput applies every local check before any remote call is
// made. It returns the per-passenger seat numbers, empty when the request
// uses the legacy count-only path.
func validateCreateInput(input *CreateBookingInput) ([]string, error) {
	if strings.TrimSpace(input.FlightID) == "" {
		return nil, domain.Validationf("flight id is required")
	}
	if domain.NormalizeEmail(input.UserEmail) == "" {
		return nil, domain.Validationf("user email is required")
	}
	if len(input.Passengers) == 0 {
		return nil, domain.Validationf("at least one passenger is required")
	}
	if input.Seats != len(input.Passengers) {
		return nil, domain.Validationf("seat count %d does not match passenger count %d", input.Seats, len(input.Passengers))
	}

	withSeat := 0
	for i, p := range input.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, domain.Validationf("passenger %d: name is required", i+1)
		}
		if strings.TrimSpace(p.Email) == "" {
			return nil, domain.Validationf("passenger %d: email is required", i+1)
		}
		if strings.TrimSpace(p.Phone) == "" {
			return nil, domain.Validationf("passenger %d: phone is required", i+1)
		}
		if strings.TrimSpace(p.Passport) == "" {
			return nil, domain.Validationf("passenger %d: passport is required", i+1)
		}
		if p.Age < 1 || p.Age > 150 {
			return nil, domain.Validationf("passenger %d: age must be between 1 and 150", i+1)
		}
		if strings.TrimSpace(p.SeatNumber) != "" {
			withSeat++
		}
	}

	// Seat selection is all or nothing: either every passenger has an
	// assigned seat, or the whole request falls back to the count path.
	if withSeat == 0 {
		return nil, nil
	}
	if withSeat != len(input.Passengers) {
		return nil, domain.Validationf("either all passengers or none must have a seat number")
	}

	seatNumbers := make([]string, 0, len(input.Passengers))
	seen := make(map[string]int, len(input.Passengers))
	for i, p := range input.Passengers {
		seat := strings.TrimSpace(p.SeatNumber)
		if _, dup := seen[seat]; dup {
			return nil, domain.Validationf("passenger %d: seat %s is assigned twice", i+1, seat)
		}
		seen[seat] = i
		seatNumbers = append(seatNumbers, seat)
	}
	return seatNumbers, nil
}

func toPassengers(inputs []PassengerInput) []domain.Passenger {
	passengers := make([]domain.Passenger, 0, len(inputs))
	for _, p := range inputs {
		passengers = append(passengers, domain.Passenger{
			Name:       strings.TrimSpace(p.Name),
			Email:      strings.TrimSpace(p.Email),
			Phone:      strings.TrimSpace(p.Phone),
			Passport:   strings.TrimSpace(p.Passport),
			Age:        p.Age,
			SeatNumber: strings.TrimSpace(p.SeatNumber),
		})
	}
	return passengers
}

func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	// The window check needs the departure time from the inventory side.
	// When the lookup fails the cancellation proceeds without the check:
	// a dead flight service must not pin bookings forever.
	if flight, err := s.flights.GetFlight(ctx, current.FlightID); err != nil {
		log.Printf("cancel booking %s: flight %s lookup failed, skipping window check: %v", id, current.FlightID, err)
	} else if !flight.DepartureTime.IsZero() {
		cutoff := flight.DepartureTime.Add(-s.cancellationWindow)
		if time.Now().After(cutoff) {
			return nil, &domain.CancellationWindowError{
				Window:    s.cancellationWindow,
				Remaining: time.Until(flight.DepartureTime),
			}
		}
	}

	if err := s.releaseSeatsErr(ctx, current); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, s.cancelledTopic, updated); err != nil {
		return updated, &domain.PublishError{BookingID: updated.ID, Err: err}
	}
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, userEmail string) ([]domain.Booking, error) {
	return s.bookings.ListByUserEmail(ctx, userEmail)
}

func (s *BookingService) releaseSeatsErr(ctx context.Context, b *domain.Booking) error {
	if len(b.SeatNumbers) > 0 {
		_, err := s.flights.ReleaseSeats(ctx, b.FlightID, b.SeatNumbers)
		return err
	}
	return s.flights.Release(ctx, b.FlightID, b.Seats)
}

func (s *BookingService) releaseSeats(ctx context.Context, b *domain.Booking) {
	if err := s.releaseSeatsErr(ctx, b); err != nil {
		log.Printf("compensating release failed for flight %s (booking %s): %v", b.FlightID, b.ID, err)
	}
}

func (s *BookingService) publish(ctx context.Context, topic string, b *domain.Booking) error {
	if s.producer == nil || topic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		BookingID: b.ID,
		UserEmail: b.UserEmail,
		FlightID:  b.FlightID,
		Seats:     b.Seats,
	}
	return s.producer.Publish(ctx, topic, b.ID, event)
}

var _ BookingUseCase = (*BookingService)(nil)
