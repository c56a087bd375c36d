package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Register(ctx context.Context, id string, payload domain.Flight) (*domain.Flight, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, from, to string, date *time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ReserveSeats(ctx context.Context, flightID string, seatNumbers []string) error {
	args := m.Called(ctx, flightID, seatNumbers)
	return args.Error(0)
}

func (m *MockFlightUseCase) ReleaseSeats(ctx context.Context, flightID string, seatNumbers []string) (int, error) {
	args := m.Called(ctx, flightID, seatNumbers)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightUseCase) Reserve(ctx context.Context, flightID string, seats int) error {
	args := m.Called(ctx, flightID, seats)
	return args.Error(0)
}

func (m *MockFlightUseCase) Release(ctx context.Context, flightID string, seats int) error {
	args := m.Called(ctx, flightID, seats)
	return args.Error(0)
}

func (m *MockFlightUseCase) BookedSeats(ctx context.Context, flightID string) ([]string, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newFlightRouter(service *MockFlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(service).Register(router.Group("/api/flights"))
	return router
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFlightHandler_Register(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	departure := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	flight := &domain.Flight{
		ID: "f1", FromPlace: "BLR", ToPlace: "DEL",
		TotalSeats: 100, AvailableSeats: 100,
		FlightDate: departure, DepartureTime: departure,
		ArrivalTime: departure.Add(2 * time.Hour), Price: 99.90,
	}
	service.On("Register", mock.Anything, "f1", mock.AnythingOfType("domain.Flight")).Return(flight, nil).Once()

	w := performRequest(t, router, http.MethodPut, "/api/flights/f1/inventory", gin.H{
		"from_place": "BLR", "to_place": "DEL", "total_seats": 100,
		"flight_date":    departure.Format(time.RFC3339),
		"departure_time": departure.Format(time.RFC3339),
		"arrival_time":   departure.Add(2 * time.Hour).Format(time.RFC3339),
		"price":          99.90,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "f1", resp.ID)
	assert.Equal(t, 100, resp.AvailableSeats)

	service.AssertExpectations(t)
}

func TestFlightHandler_Register_DuplicateConflicts(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Register", mock.Anything, "f1", mock.Anything).Return(nil, domain.ErrFlightExists).Once()

	w := performRequest(t, router, http.MethodPut, "/api/flights/f1/inventory", gin.H{
		"from_place": "BLR", "to_place": "DEL", "total_seats": 100,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlightHandler_Get_NotFound(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrFlightNotFound).Once()

	w := performRequest(t, router, http.MethodGet, "/api/flights/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "flight not found")
}

func TestFlightHandler_Search(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Search", mock.Anything, "BLR", "DEL", (*time.Time)(nil)).
		Return([]domain.Flight{{ID: "f1", FromPlace: "BLR", ToPlace: "DEL"}}, nil).Once()

	w := performRequest(t, router, http.MethodGet, "/api/flights?from=BLR&to=DEL", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp []flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "f1", resp[0].ID)
}

func TestFlightHandler_Search_MissingParams(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	w := performRequest(t, router, http.MethodGet, "/api/flights?from=BLR", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightHandler_Search_BadDate(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	w := performRequest(t, router, http.MethodGet, "/api/flights?from=BLR&to=DEL&date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestFlightHandler_ReserveSeats(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("ReserveSeats", mock.Anything, "f1", []string{"12A", "12B"}).Return(nil).Once()

	w := performRequest(t, router, http.MethodPost, "/api/flights/f1/reserve-seats", gin.H{
		"seat_numbers": []string{"12A", "12B"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestFlightHandler_ReserveSeats_Conflict(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("ReserveSeats", mock.Anything, "f1", []string{"12A"}).
		Return(&domain.SeatTakenError{FlightID: "f1", SeatNumber: "12A"}).Once()

	w := performRequest(t, router, http.MethodPost, "/api/flights/f1/reserve-seats", gin.H{
		"seat_numbers": []string{"12A"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "12A")
}

func TestFlightHandler_ReserveSeats_NotEnough(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("ReserveSeats", mock.Anything, "f1", mock.Anything).
		Return(domain.ErrNotEnoughSeats).Once()

	w := performRequest(t, router, http.MethodPost, "/api/flights/f1/reserve-seats", gin.H{
		"seat_numbers": []string{"1A", "1B"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlightHandler_ReleaseSeats(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("ReleaseSeats", mock.Anything, "f1", []string{"12A", "99Z"}).Return(1, nil).Once()

	w := performRequest(t, router, http.MethodPost, "/api/flights/f1/release-seats", gin.H{
		"seat_numbers": []string{"12A", "99Z"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["released"])
}

func TestFlightHandler_ReserveCount_Departed(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("Reserve", mock.Anything, "f1", 2).Return(domain.ErrFlightDeparted).Once()

	w := performRequest(t, router, http.MethodPost, "/api/flights/f1/reserve", gin.H{"seats": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_BookedSeats(t *testing.T) {
	service := &MockFlightUseCase{}
	router := newFlightRouter(service)

	service.On("BookedSeats", mock.Anything, "f1").Return([]string{"1A", "1B"}, nil).Once()

	w := performRequest(t, router, http.MethodGet, "/api/flights/f1/seats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1A", "1B"}, resp["seat_numbers"])
}
