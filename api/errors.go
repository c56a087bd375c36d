package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// statusFromError maps the service error taxonomy onto HTTP. Validation and
// past-flight rejections are the client's to fix; conflicts mean re-query
// availability; unavailability is transient and retryable.
func statusFromError(err error) int {
	var validation *domain.ValidationError
	var window *domain.CancellationWindowError
	switch {
	case errors.As(err, &validation), errors.Is(err, domain.ErrFlightDeparted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFlightNotFound), errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSeatConflict), errors.Is(err, domain.ErrFlightExists), errors.As(err, &window):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFlightUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var window *domain.CancellationWindowError
	if errors.As(err, &window) {
		body["hours_remaining"] = window.HoursRemaining()
	}
	c.JSON(statusFromError(err), body)
}
