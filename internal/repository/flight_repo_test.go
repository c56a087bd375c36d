package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlight(id string, totalSeats int) *domain.Flight {
	return &domain.Flight{
		ID:             id,
		FromPlace:      "BLR",
		ToPlace:        "DEL",
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		FlightDate:     time.Now().Add(48 * time.Hour),
		DepartureTime:  time.Now().Add(48 * time.Hour),
		ArrivalTime:    time.Now().Add(50 * time.Hour),
		Price:          120.50,
	}
}

func newRepoWithFlight(t *testing.T, flight *domain.Flight) *MemoryFlightRepository {
	t.Helper()
	repo := NewMemoryFlightRepository()
	_, err := repo.Register(context.Background(), flight)
	require.NoError(t, err)
	return repo
}

func TestMemoryFlightRepository_Register(t *testing.T) {
	repo := NewMemoryFlightRepository()
	ctx := context.Background()

	saved, err := repo.Register(ctx, testFlight("f1", 100))
	assert.NoError(t, err)
	assert.Equal(t, "f1", saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	// Registration is create-only.
	_, err = repo.Register(ctx, testFlight("f1", 50))
	assert.ErrorIs(t, err, domain.ErrFlightExists)

	got, err := repo.GetByID(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, 100, got.TotalSeats)
}

func TestMemoryFlightRepository_GetByID_NotFound(t *testing.T) {
	repo := NewMemoryFlightRepository()
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestMemoryFlightRepository_ReserveSeats(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 4))
	ctx := context.Background()

	err := repo.ReserveSeats(ctx, "f1", []string{"12A", "12B"})
	assert.NoError(t, err)

	got, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)
	assert.ElementsMatch(t, []string{"12A", "12B"}, got.BookedSeats)
}

func TestMemoryFlightRepository_ReserveSeats_DuplicateRejectsWholeBatch(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 10))
	ctx := context.Background()

	require.NoError(t, repo.ReserveSeats(ctx, "f1", []string{"12A"}))

	err := repo.ReserveSeats(ctx, "f1", []string{"14C", "12A", "14D"})
	var taken *domain.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "12A", taken.SeatNumber)
	assert.ErrorIs(t, err, domain.ErrSeatConflict)

	// Nothing from the failed batch was applied.
	got, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableSeats)
	assert.Equal(t, []string{"12A"}, got.BookedSeats)
}

func TestMemoryFlightRepository_ReserveSeats_DuplicateWithinRequest(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 10))

	err := repo.ReserveSeats(context.Background(), "f1", []string{"1A", "1A"})
	assert.ErrorIs(t, err, domain.ErrSeatConflict)

	got, _ := repo.GetByID(context.Background(), "f1")
	assert.Equal(t, 10, got.AvailableSeats)
}

func TestMemoryFlightRepository_ReserveSeats_Validation(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 10))
	ctx := context.Background()

	var validation *domain.ValidationError

	err := repo.ReserveSeats(ctx, "f1", nil)
	assert.ErrorAs(t, err, &validation)

	err = repo.ReserveSeats(ctx, "f1", []string{"12A", "  "})
	assert.ErrorAs(t, err, &validation)

	err = repo.ReserveSeats(ctx, "missing", []string{"12A"})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestMemoryFlightRepository_ReserveSeats_InsufficientCapacity(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 2))
	ctx := context.Background()

	err := repo.ReserveSeats(ctx, "f1", []string{"1A", "1B", "1C"})
	assert.ErrorIs(t, err, domain.ErrNotEnoughSeats)
	assert.ErrorIs(t, err, domain.ErrSeatConflict)

	got, _ := repo.GetByID(ctx, "f1")
	assert.Equal(t, 2, got.AvailableSeats)
	assert.Empty(t, got.BookedSeats)
}

func TestMemoryFlightRepository_ReserveSeats_DepartedFlight(t *testing.T) {
	flight := testFlight("f1", 10)
	flight.FlightDate = time.Now().Add(-24 * time.Hour)
	flight.DepartureTime = time.Now().Add(-23 * time.Hour)
	repo := newRepoWithFlight(t, flight)

	err := repo.ReserveSeats(context.Background(), "f1", []string{"12A"})
	assert.ErrorIs(t, err, domain.ErrFlightDeparted)
}

func TestMemoryFlightRepository_ReleaseSeats(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 4))
	ctx := context.Background()

	require.NoError(t, repo.ReserveSeats(ctx, "f1", []string{"1A", "1B", "1C"}))

	// Unknown seats are skipped silently.
	released, err := repo.ReleaseSeats(ctx, "f1", []string{"1A", "9Z", "1B"})
	assert.NoError(t, err)
	assert.Equal(t, 2, released)

	got, _ := repo.GetByID(ctx, "f1")
	assert.Equal(t, 3, got.AvailableSeats)
	assert.Equal(t, []string{"1C"}, got.BookedSeats)

	// Releasing the same seats again is a no-op.
	released, err = repo.ReleaseSeats(ctx, "f1", []string{"1A", "1B"})
	assert.NoError(t, err)
	assert.Equal(t, 0, released)

	got, _ = repo.GetByID(ctx, "f1")
	assert.Equal(t, 3, got.AvailableSeats)
}

func TestMemoryFlightRepository_ReleaseThenReserveRoundTrip(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 4))
	ctx := context.Background()

	seats := []string{"2A", "2B"}
	require.NoError(t, repo.ReserveSeats(ctx, "f1", seats))

	released, err := repo.ReleaseSeats(ctx, "f1", seats)
	require.NoError(t, err)
	require.Equal(t, 2, released)

	assert.NoError(t, repo.ReserveSeats(ctx, "f1", seats))

	got, _ := repo.GetByID(ctx, "f1")
	assert.Equal(t, 2, got.AvailableSeats)
	assert.ElementsMatch(t, seats, got.BookedSeats)
}

func TestMemoryFlightRepository_CountReserveRelease(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 5))
	ctx := context.Background()

	var validation *domain.ValidationError
	assert.ErrorAs(t, repo.Reserve(ctx, "f1", 0), &validation)
	assert.ErrorAs(t, repo.Release(ctx, "f1", -1), &validation)

	assert.NoError(t, repo.Reserve(ctx, "f1", 3))
	got, _ := repo.GetByID(ctx, "f1")
	assert.Equal(t, 2, got.AvailableSeats)

	assert.ErrorIs(t, repo.Reserve(ctx, "f1", 3), domain.ErrNotEnoughSeats)

	// Release is clamped at capacity.
	assert.NoError(t, repo.Release(ctx, "f1", 100))
	got, _ = repo.GetByID(ctx, "f1")
	assert.Equal(t, 5, got.AvailableSeats)
}

func TestMemoryFlightRepository_CountReserve_DepartedFlight(t *testing.T) {
	flight := testFlight("f1", 5)
	flight.DepartureTime = time.Now().Add(-time.Hour)
	repo := newRepoWithFlight(t, flight)

	assert.ErrorIs(t, repo.Reserve(context.Background(), "f1", 1), domain.ErrFlightDeparted)
}

func TestMemoryFlightRepository_BookedSeatsSorted(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 10))
	ctx := context.Background()

	require.NoError(t, repo.ReserveSeats(ctx, "f1", []string{"9C", "1A", "4B"}))

	seats, err := repo.BookedSeats(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"1A", "4B", "9C"}, seats)
}

func TestMemoryFlightRepository_Search(t *testing.T) {
	repo := NewMemoryFlightRepository()
	ctx := context.Background()

	f1 := testFlight("f1", 10)
	f2 := testFlight("f2", 10)
	f2.FlightDate = time.Now().Add(96 * time.Hour)
	f2.DepartureTime = time.Now().Add(96 * time.Hour)
	departed := testFlight("f3", 10)
	departed.DepartureTime = time.Now().Add(-time.Hour)
	other := testFlight("f4", 10)
	other.ToPlace = "BOM"

	for _, f := range []*domain.Flight{f1, f2, departed, other} {
		_, err := repo.Register(ctx, f)
		require.NoError(t, err)
	}

	// Case-insensitive match, departed flights excluded.
	results, err := repo.Search(ctx, "blr", "del", nil)
	assert.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "f1", results[0].ID)
	assert.Equal(t, "f2", results[1].ID)

	date := time.Now().Add(96 * time.Hour)
	results, err = repo.Search(ctx, "BLR", "DEL", &date)
	assert.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].ID)
}

func TestMemoryFlightRepository_ConcurrentOverlappingReservations(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 50))
	ctx := context.Background()

	// Every goroutine wants seat 7A plus a private seat; exactly one may win.
	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.ReserveSeats(ctx, "f1", []string{"7A", fmt.Sprintf("10-%d", i)})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Len(t, got.BookedSeats, 2)
	assert.Equal(t, got.TotalSeats-len(got.BookedSeats), got.AvailableSeats)
}

func TestMemoryFlightRepository_ConcurrentCapacityBound(t *testing.T) {
	repo := newRepoWithFlight(t, testFlight("f1", 10))
	ctx := context.Background()

	const workers = 30
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.ReserveSeats(ctx, "f1", []string{fmt.Sprintf("s%d", i)})
		}(i)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got.BookedSeats), got.TotalSeats)
	assert.GreaterOrEqual(t, got.AvailableSeats, 0)
	assert.Equal(t, got.TotalSeats-len(got.BookedSeats), got.AvailableSeats)
	assert.Len(t, got.BookedSeats, 10)
}

func TestMemoryFlightRepository_ReleaseSeats_NotFound(t *testing.T) {
	repo := NewMemoryFlightRepository()
	_, err := repo.ReleaseSeats(context.Background(), "missing", []string{"1A"})
	assert.True(t, errors.Is(err, domain.ErrFlightNotFound))
}
