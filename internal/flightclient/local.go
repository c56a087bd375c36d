package flightclient

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
)

// LocalClient serves the Client surface straight from an in-process flight
// service, for deployments that run both halves in one binary. The breaker
// still wraps it: a saturated store behaves like a sick remote.
type LocalClient struct {
	flights flights.FlightUseCase
}

func NewLocalClient(svc flights.FlightUseCase) *LocalClient {
	return &LocalClient{flights: svc}
}

func (c *LocalClient) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	return c.flights.GetByID(ctx, flightID)
}

func (c *LocalClient) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	return c.flights.ReserveSeats(ctx, flightID, seatNumbers)
}

func (c *LocalClient) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	return c.flights.ReleaseSeats(ctx, flightID, seatNumbers)
}

func (c *LocalClient) Reserve(ctx context.Context, flightID string, seats int) error {
	return c.flights.Reserve(ctx, flightID, seats)
}

func (c *LocalClient) Release(ctx context.Context, flightID string, seats int) error {
	return c.flights.Release(ctx, flightID, seats)
}

var _ Client = (*LocalClient)(nil)
