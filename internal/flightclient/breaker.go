package flightclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sony/gobreaker"
)

// BreakerSettings shape the failure window of the circuit.
type BreakerSettings struct {
	// FailureRatio trips the breaker once the failure share of the window
	// reaches it (0 picks the default).
	FailureRatio float64
	// MinRequests is the minimum number of calls in the window before the
	// ratio is considered at all.
	MinRequests uint32
	// Window is the rolling interval over which counts accumulate.
	Window time.Duration
	// Cooldown is how long the breaker stays open before a probe is let
	// through.
	Cooldown time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.5
	}
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.Window <= 0 {
		s.Window = time.Minute
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	return s
}

// BreakerClient decorates a Client with a circuit breaker. While the circuit
// is open every guarded call short-circuits to ErrFlightUnavailable without
// touching the network; it never substitutes a made-up reservation result,
// because the seat inventory is the only source of truth for seat state.
//
// Business rejections (validation, not found, conflict, departed) are passed
// through untouched and do not count against the failure window: the remote
// side answered, it just said no.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerClient(inner Client, settings BreakerSettings) *BreakerClient {
	s := settings.withDefaults()
	return &BreakerClient{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "flight",
			MaxRequests: 1,
			Interval:    s.Window,
			Timeout:     s.Cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < s.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("breaker %q: %s -> %s", name, from, to)
			},
		}),
	}
}

func (c *BreakerClient) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	var flight *domain.Flight
	err := c.run(func() error {
		var err error
		flight, err = c.inner.GetFlight(ctx, flightID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func (c *BreakerClient) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	return c.run(func() error { return c.inner.ReserveSeats(ctx, flightID, seatNumbers) })
}

func (c *BreakerClient) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	var released int
	err := c.run(func() error {
		var err error
		released, err = c.inner.ReleaseSeats(ctx, flightID, seatNumbers)
		return err
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func (c *BreakerClient) Reserve(ctx context.Context, flightID string, seats int) error {
	return c.run(func() error { return c.inner.Reserve(ctx, flightID, seats) })
}

func (c *BreakerClient) Release(ctx context.Context, flightID string, seats int) error {
	return c.run(func() error { return c.inner.Release(ctx, flightID, seats) })
}

func (c *BreakerClient) run(call func() error) error {
	result, err := c.cb.Execute(func() (interface{}, error) {
		err := call()
		if err != nil && isCallerFault(err) {
			// Smuggle the rejection out as a success so it does not feed
			// the failure counters.
			return err, nil
		}
		return nil, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.ErrFlightUnavailable
		}
		return fmt.Errorf("%w: %v", domain.ErrFlightUnavailable, err)
	}
	if result != nil {
		return result.(error)
	}
	return nil
}

func isCallerFault(err error) bool {
	var validation *domain.ValidationError
	return errors.Is(err, domain.ErrSeatConflict) ||
		errors.Is(err, domain.ErrFlightNotFound) ||
		errors.Is(err, domain.ErrFlightDeparted) ||
		errors.As(err, &validation)
}

var _ Client = (*BreakerClient)(nil)
