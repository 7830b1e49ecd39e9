package service

import (
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// TicketView is the read model of a ticket handed to callers.
type TicketView struct {
	ID         uint64    `json:"id"`
	PaymentID  uint64    `json:"payment_id"`
	ScreenID   uint64    `json:"screen_id"`
	ShowID     uint64    `json:"show_id"`
	MovieTitle string    `json:"movie_title,omitempty"`
	ShowTime   time.Time `json:"show_time"`
	Seats      []string  `json:"seats"`
	Amount     string    `json:"amount,omitempty"`
	Status     string    `json:"payment_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketToView maps a ticket and its optional show and payment to a view.
func TicketToView(t model.Ticket, show *model.Show, payment *model.Payment) TicketView {
	v := TicketView{
		ID:        t.ID,
		PaymentID: t.PaymentID,
		ScreenID:  t.ScreenID,
		ShowID:    t.ShowID,
		Seats:     utils.SplitSeatCodes(t.SeatCodes),
		CreatedAt: t.CreatedAt,
	}
	if show != nil {
		v.MovieTitle = show.MovieTitle
		v.ShowTime = show.StartsAt
	}
	if payment != nil {
		v.Amount = payment.Amount.StringFixed(2)
		v.Status = string(payment.Status)
	}
	return v
}

// SeatView is one cell of a seat map.
type SeatView struct {
	Code       string          `json:"code"`
	SeatTypeID uint64          `json:"seat_type_id"`
	State      model.SeatState `json:"state"`
}

// SeatToView maps a seat to its state at now.
func SeatToView(s model.Seat, now time.Time) SeatView {
	return SeatView{Code: s.Code, SeatTypeID: s.SeatTypeID, State: s.StateAt(now)}
}

// noticeFor maps a ticket and its context to a notification payload.
func noticeFor(t model.Ticket, show *model.Show, screen *model.Screen, payment *model.Payment, account model.User) BookingNotice {
	n := BookingNotice{
		TicketID:  t.ID,
		AccountID: account.ID,
		Email:     account.Email,
		FullName:  account.FullName,
		Seats:     utils.SplitSeatCodes(t.SeatCodes),
	}
	if show != nil {
		n.MovieTitle = show.MovieTitle
		n.ShowTime = show.StartsAt
	}
	if screen != nil {
		n.ScreenName = screen.Name
	}
	if payment != nil {
		n.Amount = payment.Amount.StringFixed(2)
	}
	return n
}
