package memory

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

type seatTable struct{ s *Store }

// compareSeatCodes orders codes by row letter, then numerically by column.
func compareSeatCodes(a, b string) int {
	if a[0] != b[0] {
		return int(a[0]) - int(b[0])
	}
	ca, _ := strconv.Atoi(a[1:])
	cb, _ := strconv.Atoi(b[1:])
	return ca - cb
}

// withBooking attaches the seat's booking for showID, if any.
func withBooking(st *state, seat model.Seat, showID uint64) model.Seat {
	seat.Assignment = nil
	if ss, ok := st.showSeats[showSeatKey{seatKey{seat.ScreenID, seat.Code}, showID}]; ok {
		seat.Assignment = &ss
	}
	return seat
}

func sortSeats(seats []model.Seat) {
	slices.SortFunc(seats, func(a, b model.Seat) int { return compareSeatCodes(a.Code, b.Code) })
}

func (t seatTable) GetForUpdate(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error) {
	return t.ListByCodes(ctx, screenID, showID, codes)
}

func (t seatTable) ListByCodes(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error) {
	var out []model.Seat
	err := t.s.do(ctx, func(st *state) error {
		for _, c := range codes {
			if seat, ok := st.seats[seatKey{screenID, c}]; ok {
				out = append(out, withBooking(st, seat, showID))
			}
		}
		sortSeats(out)
		return nil
	})
	return out, err
}

func (t seatTable) ListByScreen(ctx context.Context, screenID, showID uint64) ([]model.Seat, error) {
	var out []model.Seat
	err := t.s.do(ctx, func(st *state) error {
		for k, seat := range st.seats {
			if k.screenID == screenID {
				out = append(out, withBooking(st, seat, showID))
			}
		}
		sortSeats(out)
		return nil
	})
	return out, err
}

func (t seatTable) LockScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	return t.ListByScreen(ctx, screenID, 0)
}

func (t seatTable) CountLiveBookings(ctx context.Context, screenID uint64, now time.Time) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for k := range st.showSeats {
			if k.screenID != screenID {
				continue
			}
			if show, ok := st.shows[k.showID]; ok && show.EndsAt.After(now) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// update applies fn to each existing seat among codes that match and
// returns how many were changed.
func (t seatTable) update(ctx context.Context, screenID uint64, codes []string, match func(model.Seat) bool, fn func(*model.Seat)) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for _, c := range codes {
			k := seatKey{screenID, c}
			seat, ok := st.seats[k]
			if !ok || !match(seat) {
				continue
			}
			fn(&seat)
			st.seats[k] = seat
			n++
		}
		return nil
	})
	return n, err
}

func all(model.Seat) bool { return true }

func clearLock(seat *model.Seat) {
	seat.LockClaimant, seat.LockShowID, seat.LockExpiresAt = nil, nil, nil
}

func (t seatTable) SetLock(ctx context.Context, screenID uint64, codes []string, claimant string, showID uint64, until time.Time) error {
	_, err := t.update(ctx, screenID, codes, all, func(seat *model.Seat) {
		c, sh, u := claimant, showID, until.UTC()
		seat.LockClaimant, seat.LockShowID, seat.LockExpiresAt = &c, &sh, &u
	})
	return err
}

func (t seatTable) ClearLock(ctx context.Context, screenID uint64, codes []string, claimant string) (int64, error) {
	return t.update(ctx, screenID, codes, func(seat model.Seat) bool {
		if seat.LockExpiresAt == nil {
			return false
		}
		return claimant == "" || (seat.LockClaimant != nil && *seat.LockClaimant == claimant)
	}, clearLock)
}

func (t seatTable) Assign(ctx context.Context, screenID uint64, codes []string, showID, accountID uint64, at time.Time) error {
	return t.s.do(ctx, func(st *state) error {
		for _, c := range codes {
			if _, dup := st.showSeats[showSeatKey{seatKey{screenID, c}, showID}]; dup {
				return repository.ErrConflict
			}
		}
		for _, c := range codes {
			k := seatKey{screenID, c}
			seat, ok := st.seats[k]
			if !ok {
				continue
			}
			st.showSeats[showSeatKey{k, showID}] = model.ShowSeat{
				ScreenID:  screenID,
				SeatCode:  c,
				ShowID:    showID,
				AccountID: accountID,
				CreatedAt: at.UTC(),
			}
			clearLock(&seat)
			st.seats[k] = seat
		}
		return nil
	})
}

func (t seatTable) Unassign(ctx context.Context, screenID uint64, codes []string, showID uint64) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for _, c := range codes {
			k := showSeatKey{seatKey{screenID, c}, showID}
			if _, ok := st.showSeats[k]; ok {
				delete(st.showSeats, k)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (t seatTable) ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for k, seat := range st.seats {
			if seat.LockExpiresAt != nil && !seat.LockExpiresAt.After(now) {
				clearLock(&seat)
				st.seats[k] = seat
				n++
			}
		}
		return nil
	})
	return n, err
}

func (t seatTable) ClearFinishedAssignments(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for k := range st.showSeats {
			show, ok := st.shows[k.showID]
			if !ok || show.EndsAt.After(now) {
				continue
			}
			delete(st.showSeats, k)
			n++
		}
		return nil
	})
	return n, err
}

func (t seatTable) CreateBulk(ctx context.Context, seats []model.Seat) error {
	return t.s.do(ctx, func(st *state) error {
		for _, seat := range seats {
			if _, dup := st.seats[seatKey{seat.ScreenID, seat.Code}]; dup {
				return repository.ErrConflict
			}
		}
		for _, seat := range seats {
			seat.Assignment = nil
			st.seats[seatKey{seat.ScreenID, seat.Code}] = seat
		}
		return nil
	})
}

func (t seatTable) DeleteByScreen(ctx context.Context, screenID uint64) (int64, error) {
	var n int64
	err := t.s.do(ctx, func(st *state) error {
		for k := range st.showSeats {
			if k.screenID == screenID {
				delete(st.showSeats, k)
			}
		}
		for k := range st.seats {
			if k.screenID == screenID {
				delete(st.seats, k)
				n++
			}
		}
		return nil
	})
	return n, err
}
