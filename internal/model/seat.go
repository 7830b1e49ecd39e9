package model

import "time"

// Seat describes a physical seat on a screen.  Seats are uniquely
// identified by their screen and seat code (row letter followed by the
// column number, e.g. "A12").  The lock columns describe a temporary
// hold taken by a checkout attempt.  Bookings live in show_seats; reads
// scoped to a show attach that show's booking as Assignment.
//
// Fields:
//
//	ScreenID          – screen to which this seat belongs.
//	Code              – seat code, unique per screen.
//	SeatTypeID        – price tier of the seat.
//	IsActive          – soft availability flag (not reservation).
//	LockClaimant      – checkout attempt currently holding the seat (nullable).
//	LockShowID        – show the hold was taken for (nullable).
//	LockExpiresAt     – when the hold stops being honoured (nullable, UTC).
//	Assignment        – booking for the show the seat was read for (nullable).
type Seat struct {
	ScreenID      uint64     // seats.screen_id
	Code          string     // seats.code
	SeatTypeID    uint64     // seats.seat_type_id
	IsActive      bool       // seats.is_active
	LockClaimant  *string    // seats.lock_claimant
	LockShowID    *uint64    // seats.lock_show_id
	LockExpiresAt *time.Time // seats.lock_expires_at
	Assignment    *ShowSeat  // show_seats row of the requested show
}

// SeatState is the derived availability of a seat for one show.
type SeatState string

const (
	SeatFree     SeatState = "FREE"
	SeatHeld     SeatState = "HELD"
	SeatBooked   SeatState = "BOOKED"
	SeatInactive SeatState = "INACTIVE"
)

// HeldAt reports whether the seat carries a lock that is still honoured
// at now.  A lock whose expiry is not after now is treated as absent.
func (s Seat) HeldAt(now time.Time) bool {
	return s.LockExpiresAt != nil && s.LockExpiresAt.After(now)
}

// HeldBy reports whether claimant owns a lock on the seat that is still
// honoured at now.
func (s Seat) HeldBy(claimant string, now time.Time) bool {
	return s.HeldAt(now) && s.LockClaimant != nil && *s.LockClaimant == claimant
}

// Booked reports whether the seat is booked for the show it was read for.
func (s Seat) Booked() bool { return s.Assignment != nil }

// StateAt derives the seat state at now for the show the seat was read
// for.
func (s Seat) StateAt(now time.Time) SeatState {
	switch {
	case !s.IsActive:
		return SeatInactive
	case s.Booked():
		return SeatBooked
	case s.HeldAt(now):
		return SeatHeld
	default:
		return SeatFree
	}
}

// SeatSchema describes a block of seats to generate: every row in
// RowRange ("A-E") receives Columns seats of the given type.
type SeatSchema struct {
	RowRange   string // inclusive row letters, e.g. "A-E"
	Columns    int    // seats per row, 1..100
	SeatTypeID uint64 // seat type applied to the whole block
}
