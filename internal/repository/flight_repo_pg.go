package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGFlightRepository is the Postgres-backed inventory. Seat mutations take a
// row lock so each flight sees one writer at a time; different flights lock
// different rows and proceed in parallel.
type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewPGFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, from_place, to_place, total_seats, available_seats, booked_seats, flight_date, departure_time, arrival_time, price, created_at, updated_at`

func (r *PGFlightRepository) Register(ctx context.Context, flight *domain.Flight) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (id, from_place, to_place, total_seats, available_seats, booked_seats, flight_date, departure_time, arrival_time, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+flightColumns,
		flight.ID, flight.FromPlace, flight.ToPlace, flight.TotalSeats, flight.AvailableSeats,
		flight.BookedSeats, flight.FlightDate, flight.DepartureTime, flight.ArrivalTime, flight.Price)

	f, err := scanFlight(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrFlightExists
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights
		WHERE lower(from_place)=lower($1) AND lower(to_place)=lower($2)
		AND (departure_time > now() OR (departure_time IS NULL AND flight_date >= current_date))`
	args := []any{from, to}
	if date != nil {
		query += ` AND flight_date::date = $3::date`
		args = append(args, *date)
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
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

	return r.withFlightLock(ctx, flightID, func(tx pgx.Tx, f *domain.Flight) error {
		if f.Departed(time.Now()) {
			return domain.ErrFlightDeparted
		}
		booked := make(map[string]struct{}, len(f.BookedSeats))
		for _, s := range f.BookedSeats {
			booked[s] = struct{}{}
		}
		seen := make(map[string]struct{}, len(requested))
		for _, s := range requested {
			if _, dup := seen[s]; dup {
				return &domain.SeatTakenError{FlightID: flightID, SeatNumber: s}
			}
			seen[s] = struct{}{}
			if _, taken := booked[s]; taken {
				return &domain.SeatTakenError{FlightID: flightID, SeatNumber: s}
			}
		}
		if len(requested) > f.AvailableSeats {
			return domain.ErrNotEnoughSeats
		}

		_, err := tx.Exec(ctx, `UPDATE flights SET booked_seats = booked_seats || $2, available_seats = available_seats - $3, updated_at = now() WHERE id=$1`,
			flightID, requested, len(requested))
		return err
	})
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	released := 0
	err := r.withFlightLock(ctx, flightID, func(tx pgx.Tx, f *domain.Flight) error {
		requested := make(map[string]struct{}, len(seatNumbers))
		for _, s := range seatNumbers {
			requested[strings.TrimSpace(s)] = struct{}{}
		}
		remaining := make([]string, 0, len(f.BookedSeats))
		for _, s := range f.BookedSeats {
			if _, ok := requested[s]; ok {
				released++
				continue
			}
			remaining = append(remaining, s)
		}
		if released == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `UPDATE flights SET booked_seats = $2, available_seats = least(total_seats, available_seats + $3), updated_at = now() WHERE id=$1`,
			flightID, remaining, released)
		return err
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func (r *PGFlightRepository) Reserve(ctx context.Context, flightID string, seats int) error {
	if seats <= 0 {
		return domain.Validationf("seats must be > 0")
	}
	return r.withFlightLock(ctx, flightID, func(tx pgx.Tx, f *domain.Flight) error {
		if f.Departed(time.Now()) {
			return domain.ErrFlightDeparted
		}
		if f.AvailableSeats < seats {
			return domain.ErrNotEnoughSeats
		}
		_, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1`, flightID, seats)
		return err
	})
}

func (r *PGFlightRepository) Release(ctx context.Context, flightID string, seats int) error {
	if seats <= 0 {
		return domain.Validationf("seats must be > 0")
	}
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = least(total_seats, available_seats + $2), updated_at = now() WHERE id=$1`, flightID, seats)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) BookedSeats(ctx context.Context, flightID string) ([]string, error) {
	f, err := r.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return f.BookedSeats, nil
}

func (r *PGFlightRepository) withFlightLock(ctx context.Context, flightID string, fn func(tx pgx.Tx, f *domain.Flight) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, flightID)
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrFlightNotFound
	}
	if err != nil {
		return err
	}
	if err := fn(tx, f); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FromPlace, &f.ToPlace, &f.TotalSeats, &f.AvailableSeats, &f.BookedSeats,
		&f.FlightDate, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
