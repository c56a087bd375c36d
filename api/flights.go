package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.PUT("/:id/inventory", h.register)
	router.GET("", h.search)
	router.GET("/:id", h.get)
	router.GET("/:id/seats", h.bookedSeats)
	router.POST("/:id/reserve-seats", h.reserveSeats)
	router.POST("/:id/release-seats", h.releaseSeats)
	router.POST("/:id/reserve", h.reserve)
	router.POST("/:id/release", h.release)
}

type flightRequest struct {
	FromPlace      string    `json:"from_place"`
	ToPlace        string    `json:"to_place"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	FlightDate     time.Time `json:"flight_date"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          float64   `json:"price"`
}

type flightResponse struct {
	ID             string   `json:"id"`
	FromPlace      string   `json:"from_place"`
	ToPlace        string   `json:"to_place"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	BookedSeats    []string `json:"booked_seats,omitempty"`
	FlightDate     string   `json:"flight_date"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"`
	Price          float64  `json:"price"`
}

type seatNumbersRequest struct {
	SeatNumbers []string `json:"seat_numbers"`
}

type seatCountRequest struct {
	Seats int `json:"seats"`
}

func (h *FlightHandler) register(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Register(c.Request.Context(), c.Param("id"), domain.Flight{
		FromPlace:      req.FromPlace,
		ToPlace:        req.ToPlace,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		FlightDate:     req.FlightDate,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Price:          req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) search(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = &parsed
	}

	list, err := h.service.Search(c.Request.Context(), from, to, date)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]flightResponse, 0, len(list))
	for i := range list {
		out = append(out, toFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) bookedSeats(c *gin.Context) {
	seats, err := h.service.BookedSeats(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seat_numbers": seats})
}

func (h *FlightHandler) reserveSeats(c *gin.Context) {
	var req seatNumbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.ReserveSeats(c.Request.Context(), c.Param("id"), req.SeatNumbers); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *FlightHandler) releaseSeats(c *gin.Context) {
	var req seatNumbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	released, err := h.service.ReleaseSeats(c.Request.Context(), c.Param("id"), req.SeatNumbers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (h *FlightHandler) reserve(c *gin.Context) {
	var req seatCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Reserve(c.Request.Context(), c.Param("id"), req.Seats); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *FlightHandler) release(c *gin.Context) {
	var req seatCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Release(c.Request.Context(), c.Param("id"), req.Seats); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FromPlace:      f.FromPlace,
		ToPlace:        f.ToPlace,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
		BookedSeats:    f.BookedSeats,
		FlightDate:     f.FlightDate.Format("2006-01-02"),
		DepartureTime:  f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:    f.ArrivalTime.Format(time.RFC3339),
		Price:          f.Price,
	}
}
