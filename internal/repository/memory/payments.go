package memory

import (
	"context"
	"slices"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

type paymentTable struct{ s *Store }

func (t paymentTable) Create(ctx context.Context, p *model.Payment) error {
	return t.s.do(ctx, func(s *state) error {
		p.ID = s.id("payments")
		s.payments[p.ID] = *p
		return nil
	})
}

func (t paymentTable) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	var out model.Payment
	err := t.s.do(ctx, func(s *state) error {
		p, ok := s.payments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t paymentTable) GetForUpdate(ctx context.Context, id uint64) (*model.Payment, error) {
	return t.GetByID(ctx, id)
}

func (t paymentTable) UpdateStatus(ctx context.Context, id uint64, from, to model.PaymentStatus, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return repository.ErrStaleStatus
	}
	return t.s.do(ctx, func(s *state) error {
		p, ok := s.payments[id]
		if !ok || p.Status != from {
			return repository.ErrStaleStatus
		}
		p.Status, p.UpdatedAt = to, at.UTC()
		s.payments[id] = p
		return nil
	})
}

func (t paymentTable) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.Payment, error) {
	var out []model.Payment
	err := t.s.do(ctx, func(s *state) error {
		for _, p := range s.payments {
			if p.Status == model.PaymentPending && p.CreatedAt.Before(before) {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Payment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type ticketTable struct{ s *Store }

func (t ticketTable) Create(ctx context.Context, tk *model.Ticket) error {
	return t.s.do(ctx, func(s *state) error {
		for _, existing := range s.tickets {
			if existing.PaymentID == tk.PaymentID {
				return repository.ErrConflict
			}
		}
		tk.ID = s.id("tickets")
		s.tickets[tk.ID] = *tk
		return nil
	})
}

func (t ticketTable) get(ctx context.Context, match func(model.Ticket) bool) (*model.Ticket, error) {
	var out *model.Ticket
	err := t.s.do(ctx, func(s *state) error {
		for _, tk := range s.tickets {
			if match(tk) {
				out = &tk
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (t ticketTable) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	return t.get(ctx, func(tk model.Ticket) bool { return tk.ID == id })
}

func (t ticketTable) GetByPaymentID(ctx context.Context, paymentID uint64) (*model.Ticket, error) {
	return t.get(ctx, func(tk model.Ticket) bool { return tk.PaymentID == paymentID })
}

func (t ticketTable) ListByPayer(ctx context.Context, payerID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	err := t.s.do(ctx, func(s *state) error {
		for _, tk := range s.tickets {
			if tk.PayerID == payerID {
				out = append(out, tk)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Ticket) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	return out, err
}

func (t ticketTable) Delete(ctx context.Context, id uint64) error {
	return t.s.do(ctx, func(s *state) error {
		if _, ok := s.tickets[id]; !ok {
			return repository.ErrNotFound
		}
		delete(s.tickets, id)
		return nil
	})
}
