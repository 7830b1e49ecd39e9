package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type lockSweeper interface {
	SweepExpired(ctx context.Context) (locks, bookings int64, err error)
}

type paymentSweeper interface {
	FailStalePayments(ctx context.Context) (int, error)
}

// ExpiryWorker periodically clears lapsed seat locks, frees seats of
// finished shows and fails payments whose checkout attempt expired.
// Expiry is already honoured lazily on every read, so the worker only
// keeps stored state tidy.
type ExpiryWorker struct {
	seats    lockSweeper
	payments paymentSweeper
	interval time.Duration
	log      *zap.Logger
}

func NewExpiryWorker(seats lockSweeper, payments paymentSweeper, interval time.Duration, log *zap.Logger) *ExpiryWorker {
	return &ExpiryWorker{seats: seats, payments: payments, interval: interval, log: log}
}

// Start runs until ctx is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("expiry worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("expiry worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	locks, bookings, err := w.seats.SweepExpired(ctx)
	if err != nil {
		w.log.Error("failed to sweep expired seats", zap.Error(err))
	} else if locks > 0 || bookings > 0 {
		w.log.Info("expired seats swept",
			zap.Int64("locks", locks),
			zap.Int64("bookings", bookings),
		)
	}

	failed, err := w.payments.FailStalePayments(ctx)
	if err != nil {
		w.log.Error("failed to fail stale payments", zap.Error(err))
		return
	}
	if failed > 0 {
		w.log.Info("stale payments failed", zap.Int("count", failed))
	}
}
