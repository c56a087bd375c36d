package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
}

type bookingResponse struct {
	ID          string              `json:"id"`
	FlightID    string              `json:"flight_id"`
	UserEmail   string              `json:"user_email"`
	Passengers  []passengerResponse `json:"passengers"`
	SeatNumbers []string            `json:"seat_numbers,omitempty"`
	Seats       int                 `json:"seats"`
	Status      string              `json:"status"`
	CreatedAt   string              `json:"created_at"`
}

type passengerResponse struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Passport   string `json:"passport"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number,omitempty"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		// The booking exists when only the event publish failed; the caller
		// must learn its id together with the error.
		var publishErr *domain.PublishError
		if errors.As(err, &publishErr) && created != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"booking": toBookingResponse(created),
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) list(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user query parameter is required"})
		return
	}
	list, err := h.service.ListBookings(c.Request.Context(), user)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		var publishErr *domain.PublishError
		if errors.As(err, &publishErr) && cancelled != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"booking": toBookingResponse(cancelled),
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	passengers := make([]passengerResponse, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		passengers = append(passengers, passengerResponse(p))
	}
	return bookingResponse{
		ID:          b.ID,
		FlightID:    b.FlightID,
		UserEmail:   b.UserEmail,
		Passengers:  passengers,
		SeatNumbers: b.SeatNumbers,
		Seats:       b.Seats,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}
