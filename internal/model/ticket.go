package model

import "time"

// Ticket is the booking handed to a payer once payment succeeded.  There
// is at most one ticket per payment.
//
// Fields:
//
//	ID        – primary key identifier.
//	PayerID   – account that owns the ticket.
//	PaymentID – payment that paid for the ticket (unique).
//	ScreenID  – screen of the booked seats.
//	ShowID    – show the seats are booked for.
//	SeatCodes – comma separated seat codes, e.g. "A1,A2".
//	CreatedAt – creation timestamp.
type Ticket struct {
	ID        uint64    // tickets.id
	PayerID   uint64    // tickets.payer_id
	PaymentID uint64    // tickets.payment_id
	ScreenID  uint64    // tickets.screen_id
	ShowID    uint64    // tickets.show_id
	SeatCodes string    // tickets.seat_codes
	CreatedAt time.Time // tickets.created_at
}
