package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// Reservations places, releases and finalizes seat locks.  It is the
// only writer of seat lock and assignment state.
//
// A lock is honoured while its expiry lies in the future; once it passes,
// every read treats the seat as free regardless of the claimant.  Locks
// are taken inside one transaction that row-locks the requested seats,
// so two overlapping TryLock calls serialize on the store and the second
// one observes the first one's lock.
type Reservations struct {
	tx    TxRunner
	seats SeatStore
	clock Clock
	log   *zap.Logger
}

// NewReservations wires a Reservations over the given store.
func NewReservations(tx TxRunner, seats SeatStore, clock Clock, log *zap.Logger) *Reservations {
	return &Reservations{tx: tx, seats: seats, clock: clock, log: log}
}

// LockRequest asks for a batch of seats on one screen for one show.
type LockRequest struct {
	ScreenID  uint64
	ShowID    uint64
	SeatCodes []string
	Claimant  string        // checkout attempt taking the lock
	Hold      time.Duration // lock lifetime
}

// FinalizeRequest turns the claimant's locks into a permanent booking.
type FinalizeRequest struct {
	ScreenID  uint64
	ShowID    uint64
	SeatCodes []string
	Claimant  string
	AccountID uint64
}

// TryLock locks every seat in the batch or none of them.  It fails with a
// *SeatUnavailableError naming the seats that do not exist, are inactive,
// are booked for the requested show, or are held by another claimant.  A claimant may re-lock
// seats it already holds, which extends the hold.
func (r *Reservations) TryLock(ctx context.Context, req LockRequest) (time.Time, error) {
	codes, err := normalizeSeatCodes(req.SeatCodes)
	if err != nil {
		return time.Time{}, err
	}
	switch {
	case req.ScreenID == 0:
		return time.Time{}, validationf("screen is required")
	case req.ShowID == 0:
		return time.Time{}, validationf("show is required")
	case req.Claimant == "":
		return time.Time{}, validationf("claimant is required")
	case req.Hold <= 0:
		return time.Time{}, validationf("hold duration must be positive")
	}

	var until time.Time
	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := r.clock.Now()
		seats, err := r.seats.GetForUpdate(ctx, req.ScreenID, req.ShowID, codes)
		if err != nil {
			return storage("read seats", err)
		}
		if blocked := unavailable(seats, codes, func(s model.Seat) bool {
			if !s.IsActive || s.Booked() {
				return false
			}
			return !s.HeldAt(now) || s.HeldBy(req.Claimant, now)
		}); len(blocked) > 0 {
			return &SeatUnavailableError{Codes: blocked}
		}
		until = now.Add(req.Hold)
		if err := r.seats.SetLock(ctx, req.ScreenID, codes, req.Claimant, req.ShowID, until); err != nil {
			return storage("lock seats", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, storage("lock seats", err)
	}
	r.log.Debug("seats locked",
		zap.Uint64("screen_id", req.ScreenID),
		zap.Uint64("show_id", req.ShowID),
		zap.Strings("seats", codes),
		zap.String("claimant", req.Claimant),
		zap.Time("until", until),
	)
	return until, nil
}

// Release clears the lock fields of the given seats whoever holds them.
// Seats that are not locked are left alone, so Release is idempotent.
func (r *Reservations) Release(ctx context.Context, screenID uint64, seatCodes []string) error {
	return r.release(ctx, screenID, seatCodes, "")
}

// ReleaseClaim clears only the locks still held by claimant.  It is the
// compensation path of a checkout attempt and never touches locks a
// newer attempt took after this one's expired.
func (r *Reservations) ReleaseClaim(ctx context.Context, screenID uint64, seatCodes []string, claimant string) error {
	if claimant == "" {
		return validationf("claimant is required")
	}
	return r.release(ctx, screenID, seatCodes, claimant)
}

func (r *Reservations) release(ctx context.Context, screenID uint64, seatCodes []string, claimant string) error {
	codes, err := normalizeSeatCodes(seatCodes)
	if err != nil {
		return err
	}
	n, err := r.seats.ClearLock(ctx, screenID, codes, claimant)
	if err != nil {
		return storage("release seats", err)
	}
	r.log.Debug("seats released",
		zap.Uint64("screen_id", screenID),
		zap.Strings("seats", codes),
		zap.Int64("cleared", n),
	)
	return nil
}

// Finalize assigns the seats to the show and account and clears their
// locks.  Every seat must still be locked by the claimant for the same
// show; otherwise it fails with a *SeatUnavailableError and nothing is
// written.  Finalize joins the caller's transaction when there is one.
func (r *Reservations) Finalize(ctx context.Context, req FinalizeRequest) error {
	codes, err := normalizeSeatCodes(req.SeatCodes)
	if err != nil {
		return err
	}
	if req.AccountID == 0 || req.Claimant == "" {
		return validationf("account and claimant are required")
	}
	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := r.clock.Now()
		seats, err := r.seats.GetForUpdate(ctx, req.ScreenID, req.ShowID, codes)
		if err != nil {
			return storage("read seats", err)
		}
		if blocked := unavailable(seats, codes, func(s model.Seat) bool {
			return !s.Booked() && s.HeldBy(req.Claimant, now) && s.LockShowID != nil && *s.LockShowID == req.ShowID
		}); len(blocked) > 0 {
			return &SeatUnavailableError{Codes: blocked}
		}
		if err := r.seats.Assign(ctx, req.ScreenID, codes, req.ShowID, req.AccountID, now); err != nil {
			return storage("assign seats", err)
		}
		return nil
	})
	return storage("finalize seats", err)
}

// Unassign clears the permanent booking of the seats for showID.  It is
// used when a ticket is cancelled and joins the caller's transaction.
func (r *Reservations) Unassign(ctx context.Context, screenID, showID uint64, seatCodes []string) error {
	codes, err := normalizeSeatCodes(seatCodes)
	if err != nil {
		return err
	}
	if _, err := r.seats.Unassign(ctx, screenID, codes, showID); err != nil {
		return storage("unassign seats", err)
	}
	return nil
}

// SweepExpired clears locks whose expiry has passed and prunes bookings
// of shows that have ended.  Reads never depend on it; it only keeps the
// tables tidy.
func (r *Reservations) SweepExpired(ctx context.Context) (locks, bookings int64, err error) {
	now := r.clock.Now()
	if locks, err = r.seats.ClearExpiredLocks(ctx, now); err != nil {
		return 0, 0, storage("clear expired locks", err)
	}
	if bookings, err = r.seats.ClearFinishedAssignments(ctx, now); err != nil {
		return locks, 0, storage("clear finished bookings", err)
	}
	return locks, bookings, nil
}

// unavailable returns the codes whose seat is missing or fails ok, in
// request order.
func unavailable(seats []model.Seat, codes []string, ok func(model.Seat) bool) []string {
	byCode := make(map[string]model.Seat, len(seats))
	for _, s := range seats {
		byCode[s.Code] = s
	}
	var blocked []string
	for _, c := range codes {
		s, found := byCode[c]
		if !found || !ok(s) {
			blocked = append(blocked, c)
		}
	}
	return blocked
}

// normalizeSeatCodes validates and upper-cases a seat list.  An empty
// list, a malformed code or a repeated code is a validation error.
func normalizeSeatCodes(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, validationf("at least one seat is required")
	}
	codes := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		c, err := utils.NormalizeSeatCode(r)
		if err != nil {
			if errors.Is(err, utils.ErrSeatCode) {
				return nil, validationf("%v", err)
			}
			return nil, err
		}
		if _, dup := seen[c]; dup {
			return nil, validationf("seat %s requested twice", c)
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}
	return codes, nil
}
