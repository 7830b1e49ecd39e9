package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// Seating manages the seat inventory of screens.
type Seating struct {
	st    Stores
	res   *Reservations
	clock Clock
	log   *zap.Logger
}

// NewSeating wires a Seating.
func NewSeating(st Stores, res *Reservations, clock Clock, log *zap.Logger) *Seating {
	return &Seating{st: st, res: res, clock: clock, log: log}
}

// Generate creates the seats described by schemas on a screen.  Every row
// of a schema receives seats 1..Columns.  Schemas may not overlap and the
// seat types must exist; the whole batch is written or nothing is.
func (s *Seating) Generate(ctx context.Context, screenID uint64, schemas []model.SeatSchema) (int, error) {
	if len(schemas) == 0 {
		return 0, validationf("at least one seat schema is required")
	}
	if _, err := s.st.Screens.GetByID(ctx, screenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: screen %d", ErrNotFound, screenID)
		}
		return 0, storage("read screen", err)
	}

	typeIDs := make([]uint64, 0, len(schemas))
	for _, sc := range schemas {
		typeIDs = append(typeIDs, sc.SeatTypeID)
	}
	types, err := s.st.SeatTypes.GetByIDs(ctx, typeIDs)
	if err != nil {
		return 0, storage("read seat types", err)
	}

	var seats []model.Seat
	seen := make(map[string]struct{})
	for _, sc := range schemas {
		rows, err := utils.ExpandRowRange(sc.RowRange)
		if err != nil {
			return 0, validationf("%v", err)
		}
		if sc.Columns < 1 || sc.Columns > utils.MaxSeatColumns {
			return 0, validationf("columns must be between 1 and %d", utils.MaxSeatColumns)
		}
		if _, ok := types[sc.SeatTypeID]; !ok {
			return 0, validationf("unknown seat type %d", sc.SeatTypeID)
		}
		for _, row := range rows {
			for col := 1; col <= sc.Columns; col++ {
				code := utils.SeatCode(row, col)
				if _, dup := seen[code]; dup {
					return 0, validationf("seat %s appears in more than one schema", code)
				}
				seen[code] = struct{}{}
				seats = append(seats, model.Seat{
					ScreenID:   screenID,
					Code:       code,
					SeatTypeID: sc.SeatTypeID,
					IsActive:   true,
				})
			}
		}
	}

	err = s.st.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.st.Seats.CreateBulk(ctx, seats)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, validationf("screen %d already has some of these seats", screenID)
		}
		return 0, storage("create seats", err)
	}
	s.log.Info("seats generated", zap.Uint64("screen_id", screenID), zap.Int("count", len(seats)))
	return len(seats), nil
}

// Teardown removes every seat of a screen.  It refuses while any seat is
// held or booked for a show that has not ended so that no confirmed
// booking loses its seats.  The seat rows stay locked until the delete
// commits, so no lock or booking can slip in between.
func (s *Seating) Teardown(ctx context.Context, screenID uint64) (int64, error) {
	var removed int64
	err := s.st.Tx.WithinTx(ctx, func(ctx context.Context) error {
		seats, err := s.st.Seats.LockScreen(ctx, screenID)
		if err != nil {
			return storage("read seats", err)
		}
		now := s.clock.Now()
		for _, seat := range seats {
			if seat.HeldAt(now) {
				return fmt.Errorf("%w: seat %s is held", ErrPolicyViolation, seat.Code)
			}
		}
		booked, err := s.st.Seats.CountLiveBookings(ctx, screenID, now)
		if err != nil {
			return storage("count bookings", err)
		}
		if booked > 0 {
			return fmt.Errorf("%w: screen %d has %d booked seats", ErrPolicyViolation, screenID, booked)
		}
		removed, err = s.st.Seats.DeleteByScreen(ctx, screenID)
		return storage("delete seats", err)
	})
	if err != nil {
		return 0, storage("teardown seats", err)
	}
	s.log.Info("seats removed", zap.Uint64("screen_id", screenID), zap.Int64("count", removed))
	return removed, nil
}

// SeatMap returns every seat of the screen with its state at the current
// time.  When showID is non-zero the show must run on the screen and
// seats booked for it are reported as booked; without a show only holds
// are reported.
func (s *Seating) SeatMap(ctx context.Context, screenID, showID uint64) ([]SeatView, error) {
	if showID != 0 {
		show, err := s.st.Shows.GetByID(ctx, showID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: show %d", ErrNotFound, showID)
			}
			return nil, storage("read show", err)
		}
		if show.ScreenID != screenID {
			return nil, validationf("show %d does not run on screen %d", showID, screenID)
		}
	}
	seats, err := s.st.Seats.ListByScreen(ctx, screenID, showID)
	if err != nil {
		return nil, storage("read seats", err)
	}
	now := s.clock.Now()
	out := make([]SeatView, 0, len(seats))
	for _, seat := range seats {
		out = append(out, SeatToView(seat, now))
	}
	return out, nil
}

// ReleaseSeats clears any hold on the given seats.  It is the operator's
// escape hatch for stuck holds.
func (s *Seating) ReleaseSeats(ctx context.Context, screenID uint64, codes []string) error {
	if err := s.res.Release(ctx, screenID, codes); err != nil {
		return err
	}
	s.log.Info("seats released by operator", zap.Uint64("screen_id", screenID), zap.Strings("seats", codes))
	return nil
}
