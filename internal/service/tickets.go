package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// Tickets serves read access to confirmed bookings.
type Tickets struct {
	st Stores
}

// NewTickets wires a Tickets.
func NewTickets(st Stores) *Tickets { return &Tickets{st: st} }

// List returns the caller's tickets, newest first.
func (t *Tickets) List(ctx context.Context, caller Caller) ([]TicketView, error) {
	if caller.AccountID == 0 {
		return nil, validationf("account is required")
	}
	tickets, err := t.st.Tickets.ListByPayer(ctx, caller.AccountID)
	if err != nil {
		return nil, storage("list tickets", err)
	}
	shows := make(map[uint64]*model.Show)
	out := make([]TicketView, 0, len(tickets))
	for _, tk := range tickets {
		show, ok := shows[tk.ShowID]
		if !ok {
			if show, err = t.st.Shows.GetByID(ctx, tk.ShowID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, storage("read show", err)
			}
			shows[tk.ShowID] = show
		}
		payment, err := t.st.Payments.GetByID(ctx, tk.PaymentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storage("read payment", err)
		}
		out = append(out, TicketToView(tk, show, payment))
	}
	return out, nil
}

// Get returns one ticket.  Callers other than the payer and admins get
// ErrForbidden.
func (t *Tickets) Get(ctx context.Context, caller Caller, id uint64) (TicketView, error) {
	tk, err := t.st.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TicketView{}, fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}
		return TicketView{}, storage("read ticket", err)
	}
	if !caller.CanAccess(tk.PayerID) {
		return TicketView{}, fmt.Errorf("%w: ticket %d", ErrForbidden, id)
	}
	show, err := t.st.Shows.GetByID(ctx, tk.ShowID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return TicketView{}, storage("read show", err)
	}
	payment, err := t.st.Payments.GetByID(ctx, tk.PaymentID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return TicketView{}, storage("read payment", err)
	}
	return TicketToView(*tk, show, payment), nil
}
