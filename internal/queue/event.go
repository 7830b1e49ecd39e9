// Package queue carries booking notifications over RabbitMQ.  The
// publisher side implements service.Notifier; the consumer side renders
// the notification mails and hands them to a Mailer.
package queue

import (
	"time"

	"github.com/iliyamo/movie-booking/internal/service"
)

// Event kinds, also used as the AMQP message type.
const (
	KindBookingConfirmed = "booking.confirmed"
	KindBookingCancelled = "booking.cancelled"
)

// NotificationQueue is the durable queue both sides declare.
const NotificationQueue = "booking.notifications"

// BookingEvent is published when a booking is confirmed or cancelled.  It
// contains everything the mail needs so consumers never query the primary
// database.
type BookingEvent struct {
	Kind       string    `json:"kind"`
	TicketID   uint64    `json:"ticket_id"`
	AccountID  uint64    `json:"account_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	MovieTitle string    `json:"movie_title"`
	ShowTime   time.Time `json:"show_time"`
	ScreenName string    `json:"screen_name,omitempty"`
	Seats      []string  `json:"seats"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventFromNotice maps a service notice to the wire event.
func EventFromNotice(kind string, n service.BookingNotice, at time.Time) BookingEvent {
	return BookingEvent{
		Kind:       kind,
		TicketID:   n.TicketID,
		AccountID:  n.AccountID,
		Email:      n.Email,
		FullName:   n.FullName,
		MovieTitle: n.MovieTitle,
		ShowTime:   n.ShowTime,
		ScreenName: n.ScreenName,
		Seats:      n.Seats,
		Amount:     n.Amount,
		OccurredAt: at.UTC(),
	}
}
