// Package flightclient is the booking side's view of the flight inventory
// service: a small call surface, an HTTP implementation of it, and a
// circuit-breaker decorator that bounds the blast radius when the inventory
// side is unhealthy.
package flightclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type Client interface {
	GetFlight(ctx context.Context, flightID string) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error)
	Reserve(ctx context.Context, flightID string, seats int) error
	Release(ctx context.Context, flightID string, seats int) error
}

// HTTPClient talks to a remote flight service over its REST surface. Every
// call carries the request context and the transport timeout, so a hung
// inventory host surfaces as an error the breaker can count.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type flightPayload struct {
	ID             string    `json:"id"`
	FromPlace      string    `json:"from_place"`
	ToPlace        string    `json:"to_place"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	BookedSeats    []string  `json:"booked_seats,omitempty"`
	FlightDate     string    `json:"flight_date"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          float64   `json:"price"`
}

// parseFlightDate accepts both the date-only form the flight API emits and a
// full timestamp.
func parseFlightDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

func (c *HTTPClient) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/flights/"+flightID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get flight %s: %w", flightID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var payload flightPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode flight %s: %w", flightID, err)
	}
	return &domain.Flight{
		ID:             payload.ID,
		FromPlace:      payload.FromPlace,
		ToPlace:        payload.ToPlace,
		TotalSeats:     payload.TotalSeats,
		AvailableSeats: payload.AvailableSeats,
		BookedSeats:    payload.BookedSeats,
		FlightDate:     parseFlightDate(payload.FlightDate),
		DepartureTime:  payload.DepartureTime,
		ArrivalTime:    payload.ArrivalTime,
		Price:          payload.Price,
	}, nil
}

func (c *HTTPClient) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	return c.post(ctx, flightID, "reserve-seats", map[string]any{"seat_numbers": seatNumbers}, nil)
}

func (c *HTTPClient) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	var out struct {
		Released int `json:"released"`
	}
	if err := c.post(ctx, flightID, "release-seats", map[string]any{"seat_numbers": seatNumbers}, &out); err != nil {
		return 0, err
	}
	return out.Released, nil
}

func (c *HTTPClient) Reserve(ctx context.Context, flightID string, seats int) error {
	return c.post(ctx, flightID, "reserve", map[string]any{"seats": seats}, nil)
}

func (c *HTTPClient) Release(ctx context.Context, flightID string, seats int) error {
	return c.post(ctx, flightID, "release", map[string]any{"seats": seats}, nil)
}

func (c *HTTPClient) post(ctx context.Context, flightID, action string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/flights/%s/%s", c.baseURL, flightID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s flight %s: %w", action, flightID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// statusError reconstructs the error category from the remote status code so
// the caller (and the breaker) can tell client faults from server failures.
func statusError(resp *http.Response) error {
	message := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrFlightNotFound
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", message, domain.ErrSeatConflict)
	case http.StatusBadRequest:
		return &domain.ValidationError{Reason: message}
	default:
		return fmt.Errorf("flight service returned %d: %s", resp.StatusCode, message)
	}
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "request rejected"
	}
	return payload.Error
}
