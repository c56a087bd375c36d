package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/kafka"
)

// Sender renders booking notifications. Actual mail delivery lives outside
// this service; the stub prints what would be sent.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendBookingCreated(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s: booking %s confirmed for flight %s (%d seats)\n",
		event.UserEmail, event.BookingID, event.FlightID, event.Seats)
	return nil
}

func (s *Sender) SendBookingCancelled(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s: booking %s cancelled for flight %s (%d seats)\n",
		event.UserEmail, event.BookingID, event.FlightID, event.Seats)
	return nil
}
