package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/telemetry"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// DefaultCancelCutoff is how long before showtime cancellation closes.
const DefaultCancelCutoff = 6 * time.Hour

// Cancellation reverses confirmed bookings.
type Cancellation struct {
	st     Stores
	res    *Reservations
	notify dispatcher
	clock  Clock
	cutoff time.Duration
	log    *zap.Logger
}

// NewCancellation wires a Cancellation.  A non-positive cutoff selects
// DefaultCancelCutoff.
func NewCancellation(st Stores, res *Reservations, notifier Notifier, clock Clock, cutoff time.Duration, log *zap.Logger) *Cancellation {
	if cutoff <= 0 {
		cutoff = DefaultCancelCutoff
	}
	return &Cancellation{
		st:     st,
		res:    res,
		notify: dispatcher{st: st, notifier: notifier, log: log},
		clock:  clock,
		cutoff: cutoff,
		log:    log,
	}
}

// Cancel deletes a ticket, frees its seats and refunds its payment in one
// transaction.  Inside the cutoff window before showtime it fails with
// ErrPolicyViolation and changes nothing.
func (c *Cancellation) Cancel(ctx context.Context, caller Caller, ticketID uint64) error {
	ctx, span := telemetry.StartSpan(ctx, "booking.cancel", attribute.Int64("ticket_id", int64(ticketID)))
	defer span.End()

	t, err := c.st.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return telemetry.Fail(span, fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID))
		}
		return telemetry.Fail(span, storage("read ticket", err))
	}
	if !caller.CanAccess(t.PayerID) {
		return telemetry.Fail(span, fmt.Errorf("%w: ticket %d", ErrForbidden, ticketID))
	}
	show, err := c.st.Shows.GetByID(ctx, t.ShowID)
	if err != nil {
		return telemetry.Fail(span, storage("read show", err))
	}
	if closes := show.StartsAt.Add(-c.cutoff); c.clock.Now().After(closes) {
		return telemetry.Fail(span, fmt.Errorf("%w: cancellation closed at %s, %s before showtime",
			ErrPolicyViolation, closes.Format(time.RFC3339), c.cutoff))
	}

	var payment *model.Payment
	err = c.st.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := c.st.Tickets.Delete(ctx, t.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: ticket %d", ErrNotFound, t.ID)
			}
			return storage("delete ticket", err)
		}
		if err := c.res.Unassign(ctx, t.ScreenID, t.ShowID, utils.SplitSeatCodes(t.SeatCodes)); err != nil {
			return fmt.Errorf("unassign seats: %w", err)
		}
		if err := c.st.Payments.UpdateStatus(ctx, t.PaymentID, model.PaymentSuccess, model.PaymentRefunded, c.clock.Now()); err != nil {
			return storage("refund payment", err)
		}
		p, err := c.st.Payments.GetByID(ctx, t.PaymentID)
		if err != nil {
			return storage("read payment", err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return telemetry.Fail(span, storage("cancel booking", err))
	}

	c.log.Info("booking cancelled",
		zap.Uint64("ticket_id", t.ID),
		zap.Uint64("payment_id", t.PaymentID),
		zap.Uint64("caller_id", caller.AccountID),
		zap.String("seats", t.SeatCodes),
	)
	c.notify.send(ctx, noticeCancelled, *t, show, payment)
	return nil
}
