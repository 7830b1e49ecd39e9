package model

import "time"

// ShowSeat is the permanent booking of one seat for one show.  A seat
// carries at most one row per show, so the same physical seat can be sold
// for every show that runs on its screen.
//
// Fields:
//
//	ScreenID  – screen of the booked seat.
//	SeatCode  – code of the booked seat.
//	ShowID    – show the seat is booked for.
//	AccountID – account that owns the booking.
//	CreatedAt – when the booking was confirmed (UTC).
type ShowSeat struct {
	ScreenID  uint64    // show_seats.screen_id
	SeatCode  string    // show_seats.seat_code
	ShowID    uint64    // show_seats.show_id
	AccountID uint64    // show_seats.account_id
	CreatedAt time.Time // show_seats.created_at
}
