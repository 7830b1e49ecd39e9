package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"strings"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

// seatSelect reads seats together with their booking for one show.  The
// first argument is the show id; 0 matches no booking.
const seatSelect = `SELECT s.screen_id, s.code, s.seat_type_id, s.is_active,
	s.lock_claimant, s.lock_show_id, s.lock_expires_at,
	ss.show_id, ss.account_id, ss.created_at
	FROM seats s
	LEFT JOIN show_seats ss
	  ON ss.screen_id = s.screen_id AND ss.seat_code = s.code AND ss.show_id = ?`

// seatOrder sorts seat codes by row letter, then numerically by column.
const seatOrder = `ORDER BY LEFT(s.code, 1), CAST(SUBSTRING(s.code, 2) AS UNSIGNED)`

// SeatRepo provides methods to work with seats in the database.  Lock
// columns live on the seat row; bookings are show_seats rows keyed by
// seat and show.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

func scanSeat(row rowScanner) (model.Seat, error) {
	var (
		s         model.Seat
		showID    sql.NullInt64
		accountID sql.NullInt64
		bookedAt  sql.NullTime
	)
	err := row.Scan(
		&s.ScreenID, &s.Code, &s.SeatTypeID, &s.IsActive,
		&s.LockClaimant, &s.LockShowID, &s.LockExpiresAt,
		&showID, &accountID, &bookedAt,
	)
	if err == nil && showID.Valid {
		s.Assignment = &model.ShowSeat{
			ScreenID:  s.ScreenID,
			SeatCode:  s.Code,
			ShowID:    uint64(showID.Int64),
			AccountID: uint64(accountID.Int64),
			CreatedAt: bookedAt.Time,
		}
	}
	return s, err
}

// GetForUpdate reads the seats among codes with their booking for showID.
// Seat rows stay locked until the transaction in ctx ends and are locked
// in code order so concurrent batches over overlapping seats cannot
// deadlock each other.
func (r *SeatRepo) GetForUpdate(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	q := seatSelect + `
	      WHERE s.screen_id = ? AND s.code IN (` + inClause(len(codes)) + `)
	      ORDER BY s.code
	      FOR UPDATE`
	args := append([]any{showID, screenID}, stringArgs(codes)...)
	return queryAll(ctx, conn(ctx, r.db), scanSeat, q, args...)
}

// ListByCodes reads the seats among codes with their booking for showID
// without locking.
func (r *SeatRepo) ListByCodes(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	q := seatSelect + `
	      WHERE s.screen_id = ? AND s.code IN (` + inClause(len(codes)) + `) ` + seatOrder
	args := append([]any{showID, screenID}, stringArgs(codes)...)
	return queryAll(ctx, conn(ctx, r.db), scanSeat, q, args...)
}

// ListByScreen retrieves all seats of a screen with their booking for
// showID, ordered by row then column.
func (r *SeatRepo) ListByScreen(ctx context.Context, screenID, showID uint64) ([]model.Seat, error) {
	q := seatSelect + ` WHERE s.screen_id = ? ` + seatOrder
	return queryAll(ctx, conn(ctx, r.db), scanSeat, q, showID, screenID)
}

// LockScreen reads every seat of a screen with row locks held until the
// transaction in ctx ends.
func (r *SeatRepo) LockScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	q := seatSelect + ` WHERE s.screen_id = ? ORDER BY s.code FOR UPDATE`
	return queryAll(ctx, conn(ctx, r.db), scanSeat, q, 0, screenID)
}

// CountLiveBookings counts bookings on the screen for shows that have not
// ended by now.
func (r *SeatRepo) CountLiveBookings(ctx context.Context, screenID uint64, now time.Time) (int64, error) {
	const q = `SELECT COUNT(*) FROM show_seats ss
	           JOIN shows sh ON sh.id = ss.show_id
	           WHERE ss.screen_id = ? AND sh.ends_at > ?`
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx, q, screenID, now.UTC()).Scan(&n)
	return n, err
}

// SetLock writes the claimant, show and expiry on every seat in codes.
func (r *SeatRepo) SetLock(ctx context.Context, screenID uint64, codes []string, claimant string, showID uint64, until time.Time) error {
	q := `UPDATE seats SET lock_claimant = ?, lock_show_id = ?, lock_expires_at = ?
	      WHERE screen_id = ? AND code IN (` + inClause(len(codes)) + `)`
	args := append([]any{claimant, showID, until.UTC(), screenID}, stringArgs(codes)...)
	_, err := exec(ctx, conn(ctx, r.db), q, args...)
	return err
}

// ClearLock clears the lock columns of the locked seats among codes.  A
// non-empty claimant restricts the update to seats it still holds.
func (r *SeatRepo) ClearLock(ctx context.Context, screenID uint64, codes []string, claimant string) (int64, error) {
	var b strings.Builder
	b.WriteString(`UPDATE seats SET lock_claimant = NULL, lock_show_id = NULL, lock_expires_at = NULL
	      WHERE screen_id = ? AND lock_expires_at IS NOT NULL AND code IN (`)
	b.WriteString(inClause(len(codes)))
	b.WriteString(`)`)
	args := append([]any{screenID}, stringArgs(codes)...)
	if claimant != "" {
		b.WriteString(` AND lock_claimant = ?`)
		args = append(args, claimant)
	}
	return exec(ctx, conn(ctx, r.db), b.String(), args...)
}

// Assign books the seats for showID and accountID and clears their
// locks.  A seat already booked for the show maps to ErrConflict.
func (r *SeatRepo) Assign(ctx context.Context, screenID uint64, codes []string, showID, accountID uint64, at time.Time) error {
	if len(codes) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO show_seats (screen_id, seat_code, show_id, account_id, created_at) VALUES `)
	args := make([]any, 0, len(codes)*5)
	for i, c := range codes {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, screenID, c, showID, accountID, at.UTC())
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	_, err := r.ClearLock(ctx, screenID, codes, "")
	return err
}

// Unassign deletes the bookings of the seats among codes for showID.
func (r *SeatRepo) Unassign(ctx context.Context, screenID uint64, codes []string, showID uint64) (int64, error) {
	q := `DELETE FROM show_seats
	      WHERE screen_id = ? AND show_id = ? AND seat_code IN (` + inClause(len(codes)) + `)`
	args := append([]any{screenID, showID}, stringArgs(codes)...)
	return exec(ctx, conn(ctx, r.db), q, args...)
}

// ClearExpiredLocks clears every lock whose expiry is not after now.
func (r *SeatRepo) ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE seats SET lock_claimant = NULL, lock_show_id = NULL, lock_expires_at = NULL
	           WHERE lock_expires_at IS NOT NULL AND lock_expires_at <= ?`
	return exec(ctx, conn(ctx, r.db), q, now.UTC())
}

// ClearFinishedAssignments deletes bookings of shows that ended by now.
func (r *SeatRepo) ClearFinishedAssignments(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE ss FROM show_seats ss
	           JOIN shows sh ON sh.id = ss.show_id
	           WHERE sh.ends_at <= ?`
	return exec(ctx, conn(ctx, r.db), q, now.UTC())
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (screen_id, code, seat_type_id, is_active) VALUES `)
	args := make([]any, 0, len(seats)*4)
	for i, seat := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, seat.ScreenID, seat.Code, seat.SeatTypeID, seat.IsActive)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// DeleteByScreen removes all seats of a screen and their bookings.  It
// does not check for live bookings; callers verify the screen is idle
// first.
func (r *SeatRepo) DeleteByScreen(ctx context.Context, screenID uint64) (int64, error) {
	q := conn(ctx, r.db)
	if _, err := exec(ctx, q, `DELETE FROM show_seats WHERE screen_id = ?`, screenID); err != nil {
		return 0, err
	}
	return exec(ctx, q, `DELETE FROM seats WHERE screen_id = ?`, screenID)
}
