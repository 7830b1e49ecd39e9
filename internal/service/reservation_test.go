package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

func TestTryLock_LocksAllSeats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	until, err := e.res.TryLock(ctx, e.lockReq("c1", "a1", "A2"))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(5*time.Minute), until)

	for _, code := range []string{"A1", "A2"} {
		s := e.seat(t, code)
		assert.True(t, s.HeldBy("c1", e.clock.Now()), code)
		assert.Equal(t, e.show.ID, *s.LockShowID)
		assert.Equal(t, model.SeatHeld, s.StateAt(e.clock.Now()))
	}
}

func TestTryLock_AllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A2"))
	require.NoError(t, err)

	_, err = e.res.TryLock(ctx, e.lockReq("c2", "A1", "A2", "A3"))
	require.ErrorIs(t, err, service.ErrSeatUnavailable)
	var seatErr *service.SeatUnavailableError
	require.True(t, errors.As(err, &seatErr))
	assert.Equal(t, []string{"A2"}, seatErr.Codes)

	// neither A1 nor A3 was touched
	assert.Equal(t, model.SeatFree, e.seat(t, "A1").StateAt(e.clock.Now()))
	assert.Equal(t, model.SeatFree, e.seat(t, "A3").StateAt(e.clock.Now()))
	assert.True(t, e.seat(t, "A2").HeldBy("c1", e.clock.Now()))
}

func TestTryLock_RejectsUnknownInactiveAndBooked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.book(t, "A5")

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1", "B1", "C9", "A5"))
	var seatErr *service.SeatUnavailableError
	require.True(t, errors.As(err, &seatErr))
	assert.Equal(t, []string{"B1", "C9", "A5"}, seatErr.Codes)
}

func TestTryLock_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]service.LockRequest{
		"no seats":     e.lockReq("c1"),
		"bad code":     e.lockReq("c1", "A0"),
		"signed code":  e.lockReq("c1", "A+1"),
		"duplicate":    e.lockReq("c1", "A1", "a1"),
		"no claimant":  e.lockReq("", "A1"),
		"zero hold":    {ScreenID: e.screen.ID, ShowID: e.show.ID, SeatCodes: []string{"A1"}, Claimant: "c1"},
		"missing show": {ScreenID: e.screen.ID, SeatCodes: []string{"A1"}, Claimant: "c1", Hold: time.Minute},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.res.TryLock(ctx, req)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestTryLock_BookingBlocksOnlyItsShow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.book(t, "A1")
	evening := e.laterShow(t, 30*time.Hour)

	req := e.lockReq("c2", "A1")
	req.ShowID = evening.ID
	_, err := e.res.TryLock(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, e.seatFor(t, evening.ID, "A1").StateAt(e.clock.Now()))
	assert.Equal(t, model.SeatBooked, e.seat(t, "A1").StateAt(e.clock.Now()))

	require.NoError(t, e.res.Finalize(ctx, service.FinalizeRequest{
		ScreenID: e.screen.ID, ShowID: evening.ID, SeatCodes: []string{"A1"}, Claimant: "c2", AccountID: e.other,
	}))
	assert.Equal(t, e.other, e.seatFor(t, evening.ID, "A1").Assignment.AccountID)
	assert.Equal(t, e.payer, e.seat(t, "A1").Assignment.AccountID)

	_, err = e.res.TryLock(ctx, e.lockReq("c3", "A1"))
	assert.ErrorIs(t, err, service.ErrSeatUnavailable, "still booked for the first show")
	_, err = e.res.TryLock(ctx, req)
	assert.ErrorIs(t, err, service.ErrSeatUnavailable, "now booked for the evening show")
}

func TestUnassign_LeavesOtherShowsBooked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	evening := e.laterShow(t, 30*time.Hour)
	e.book(t, "A1")
	e.bookShow(t, evening.ID, "A1")

	require.NoError(t, e.res.Unassign(ctx, e.screen.ID, e.show.ID, []string{"A1"}))
	assert.False(t, e.seat(t, "A1").Booked())
	assert.True(t, e.seatFor(t, evening.ID, "A1").Booked())
}

func TestTryLock_ExpiredLockIsFree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1"))
	require.NoError(t, err)

	e.clock.Advance(5 * time.Minute) // expiry equal to now is no longer honoured
	assert.Equal(t, model.SeatFree, e.seat(t, "A1").StateAt(e.clock.Now()))

	_, err = e.res.TryLock(ctx, e.lockReq("c2", "A1"))
	require.NoError(t, err)
	assert.True(t, e.seat(t, "A1").HeldBy("c2", e.clock.Now()))
}

func TestTryLock_SameClaimantExtendsHold(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1"))
	require.NoError(t, err)
	e.clock.Advance(2 * time.Minute)
	until, err := e.res.TryLock(ctx, e.lockReq("c1", "A1"))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(7*time.Minute), until)
}

func TestTryLock_ConcurrentClaimantsNeverShareASeat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claimant := fmt.Sprintf("c%d", i)
			// overlapping batches: every batch contains A3
			codes := []string{"A3", fmt.Sprintf("A%d", 1+i%2)}
			if _, err := e.res.TryLock(ctx, e.lockReq(claimant, codes...)); err == nil {
				mu.Lock()
				winners = append(winners, claimant)
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, service.ErrSeatUnavailable)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.True(t, e.seat(t, "A3").HeldBy(winners[0], e.clock.Now()))
}

func TestRelease_IsIdempotentAndUnconditional(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1", "A2"))
	require.NoError(t, err)

	require.NoError(t, e.res.Release(ctx, e.screen.ID, []string{"A1", "A2"}))
	require.NoError(t, e.res.Release(ctx, e.screen.ID, []string{"A1", "A2"}))
	require.NoError(t, e.res.Release(ctx, e.screen.ID, []string{"A3"})) // never locked

	for _, code := range []string{"A1", "A2"} {
		s := e.seat(t, code)
		assert.Nil(t, s.LockClaimant)
		assert.Nil(t, s.LockExpiresAt)
	}
}

func TestReleaseClaim_LeavesOtherClaimantsAlone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1"))
	require.NoError(t, err)
	e.clock.Advance(6 * time.Minute)
	_, err = e.res.TryLock(ctx, e.lockReq("c2", "A1"))
	require.NoError(t, err)

	require.NoError(t, e.res.ReleaseClaim(ctx, e.screen.ID, []string{"A1"}, "c1"))
	assert.True(t, e.seat(t, "A1").HeldBy("c2", e.clock.Now()))
}

func TestFinalize(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1", "A2"))
	require.NoError(t, err)

	t.Run("other claimant is rejected", func(t *testing.T) {
		err := e.res.Finalize(ctx, service.FinalizeRequest{
			ScreenID: e.screen.ID, ShowID: e.show.ID, SeatCodes: []string{"A1", "A2"}, Claimant: "c2", AccountID: e.payer,
		})
		assert.ErrorIs(t, err, service.ErrSeatUnavailable)
		assert.False(t, e.seat(t, "A1").Booked())
	})

	t.Run("same claimant books the seats", func(t *testing.T) {
		err := e.res.Finalize(ctx, service.FinalizeRequest{
			ScreenID: e.screen.ID, ShowID: e.show.ID, SeatCodes: []string{"A1", "A2"}, Claimant: "c1", AccountID: e.payer,
		})
		require.NoError(t, err)
		s := e.seat(t, "A1")
		assert.True(t, s.Booked())
		assert.Equal(t, e.payer, s.Assignment.AccountID)
		assert.Equal(t, e.show.ID, s.Assignment.ShowID)
		assert.Nil(t, s.LockClaimant)
		assert.Equal(t, model.SeatBooked, s.StateAt(e.clock.Now()))
	})
}

func TestFinalize_ExpiredLockFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1"))
	require.NoError(t, err)
	e.clock.Advance(5*time.Minute + time.Second)

	err = e.res.Finalize(ctx, service.FinalizeRequest{
		ScreenID: e.screen.ID, ShowID: e.show.ID, SeatCodes: []string{"A1"}, Claimant: "c1", AccountID: e.payer,
	})
	assert.ErrorIs(t, err, service.ErrSeatUnavailable)
}

func TestSweepExpired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.book(t, "A5")
	_, err := e.res.TryLock(ctx, e.lockReq("c1", "A1", "A2"))
	require.NoError(t, err)

	e.clock.Advance(10 * time.Minute)
	locks, bookings, err := e.res.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), locks)
	assert.Equal(t, int64(0), bookings)
	assert.Nil(t, e.seat(t, "A1").LockExpiresAt)

	e.clock.Advance(30 * time.Hour) // show has ended
	_, bookings, err = e.res.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bookings)
	assert.False(t, e.seat(t, "A5").Booked())
}
