package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewPGBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_id, user_email, passengers, seat_numbers, seats, status, created_at, updated_at`

// passengerRecord is the storage form of a passenger; the mapping between
// the domain struct and this record is explicit so the schema never leaks
// into the domain package.
type passengerRecord struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Passport   string `json:"passport"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number,omitempty"`
}

func marshalPassengers(passengers []domain.Passenger) ([]byte, error) {
	records := make([]passengerRecord, 0, len(passengers))
	for _, p := range passengers {
		records = append(records, passengerRecord(p))
	}
	return json.Marshal(records)
}

func unmarshalPassengers(data []byte) ([]domain.Passenger, error) {
	var records []passengerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	passengers := make([]domain.Passenger, 0, len(records))
	for _, rec := range records {
		passengers = append(passengers, domain.Passenger(rec))
	}
	return passengers, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	passengers, err := marshalPassengers(booking.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}

	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, flight_id, user_email, passengers, seat_numbers, seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		booking.ID, booking.FlightID, booking.UserEmail, passengers, booking.SeatNumbers, booking.Seats, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) ListByUserEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_email=$1 ORDER BY created_at`,
		domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING `+bookingColumns, id, status)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var passengers []byte
	if err := row.Scan(&b.ID, &b.FlightID, &b.UserEmail, &passengers, &b.SeatNumbers, &b.Seats, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.Passengers, err = unmarshalPassengers(passengers); err != nil {
		return nil, fmt.Errorf("decode passengers: %w", err)
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
