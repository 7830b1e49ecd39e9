package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
)

type noticeKind int

const (
	noticeConfirmed noticeKind = iota
	noticeCancelled
)

// dispatcher sends booking notifications after a transaction committed.
// Failures are logged and dropped: the booking already happened.
type dispatcher struct {
	st       Stores
	notifier Notifier
	log      *zap.Logger
}

func (d dispatcher) send(ctx context.Context, kind noticeKind, t model.Ticket, show *model.Show, payment *model.Payment) {
	if d.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	account, err := d.st.Accounts.GetByID(ctx, t.PayerID)
	if err != nil {
		d.log.Warn("notification skipped: account lookup failed",
			zap.Uint64("ticket_id", t.ID), zap.Uint64("account_id", t.PayerID), zap.Error(err))
		return
	}
	screen, err := d.st.Screens.GetByID(ctx, t.ScreenID)
	if err != nil {
		d.log.Warn("notification without screen details",
			zap.Uint64("ticket_id", t.ID), zap.Uint64("screen_id", t.ScreenID), zap.Error(err))
	}
	n := noticeFor(t, show, screen, payment, account)
	switch kind {
	case noticeConfirmed:
		err = d.notifier.BookingConfirmed(ctx, n)
	case noticeCancelled:
		err = d.notifier.BookingCancelled(ctx, n)
	}
	if err != nil {
		d.log.Warn("notification failed", zap.Uint64("ticket_id", t.ID), zap.Error(err))
	}
}
