package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestWithinTx_CommitsAndJoinsNestedCalls(t *testing.T) {
	db, mock := newMock(t)
	seats := NewSeatRepo(db)
	tx := NewTxManager(db)
	until := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET lock_claimant = ?")).
		WithArgs("claim-1", 7, until, 1, "A1", "A2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET lock_claimant = NULL")).
		WithArgs(1, "A1", "claim-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := seats.SetLock(ctx, 1, []string{"A1", "A2"}, "claim-1", 7, until); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			n, err := seats.ClearLock(ctx, 1, []string{"A1"}, "claim-1")
			assert.Equal(t, int64(1), n)
			return err
		})
	})
	require.NoError(t, err)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	tx := NewTxManager(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tx.WithinTx(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)
	tx := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = tx.WithinTx(context.Background(), func(context.Context) error { panic("boom") })
	})
}

var seatCols = []string{"screen_id", "code", "seat_type_id", "is_active",
	"lock_claimant", "lock_show_id", "lock_expires_at", "show_id", "account_id", "created_at"}

func TestSeatRepo_GetForUpdate(t *testing.T) {
	db, mock := newMock(t)
	until := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)

	mock.ExpectQuery(`LEFT JOIN show_seats ss\s+ON ss.screen_id = s.screen_id AND ss.seat_code = s.code AND ss.show_id = \?\s+WHERE s.screen_id = \? AND s.code IN \(\?, \?\)\s+ORDER BY s.code\s+FOR UPDATE`).
		WithArgs(7, 1, "A1", "A2").
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(int64(1), "A1", int64(2), true, "claim-1", int64(7), until, nil, nil, nil).
			AddRow(int64(1), "A2", int64(2), true, nil, nil, nil, int64(7), int64(3), until))

	seats, err := NewSeatRepo(db).GetForUpdate(context.Background(), 1, 7, []string{"A1", "A2"})
	require.NoError(t, err)
	require.Len(t, seats, 2)

	assert.True(t, seats[0].HeldBy("claim-1", until.Add(-time.Minute)))
	assert.False(t, seats[0].Booked())
	require.True(t, seats[1].Booked())
	assert.Equal(t, model.ShowSeat{ScreenID: 1, SeatCode: "A2", ShowID: 7, AccountID: 3, CreatedAt: until}, *seats[1].Assignment)
	assert.Nil(t, seats[1].LockExpiresAt)
}

func TestSeatRepo_AssignBooksPerShow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSeatRepo(db)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	const insert = "INSERT INTO show_seats (screen_id, seat_code, show_id, account_id, created_at) VALUES (?, ?, ?, ?, ?),(?, ?, ?, ?, ?)"

	mock.ExpectExec(regexp.QuoteMeta(insert)).
		WithArgs(1, "A1", 7, 3, at, 1, "A2", 7, 3, at).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET lock_claimant = NULL")).
		WithArgs(1, "A1", "A2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.Assign(context.Background(), 1, []string{"A1", "A2"}, 7, 3, at))

	mock.ExpectExec(regexp.QuoteMeta(insert)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	err := repo.Assign(context.Background(), 1, []string{"A1", "A2"}, 7, 3, at)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSeatRepo_UnassignDeletesOnlyTheShow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM show_seats\s+WHERE screen_id = \? AND show_id = \? AND seat_code IN \(\?\)`).
		WithArgs(1, 7, "A1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewSeatRepo(db).Unassign(context.Background(), 1, []string{"A1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeatRepo_TeardownQueries(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSeatRepo(db)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE s.screen_id = \? ORDER BY s.code FOR UPDATE`).
		WithArgs(0, 1).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(int64(1), "A1", int64(2), true, nil, nil, nil, nil, nil, nil))
	seats, err := repo.LockScreen(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.False(t, seats[0].Booked())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM show_seats ss\s+JOIN shows sh ON sh.id = ss.show_id\s+WHERE ss.screen_id = \? AND sh.ends_at > \?`).
		WithArgs(1, now).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(2)))
	n, err := repo.CountLiveBookings(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM show_seats WHERE screen_id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seats WHERE screen_id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 4))
	removed, err := repo.DeleteByScreen(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}

func TestSeatRepo_ClearLockWithoutClaimant(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`lock_expires_at IS NOT NULL AND code IN \(\?, \?\)$`).
		WithArgs(1, "A1", "A2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := NewSeatRepo(db).ClearLock(context.Background(), 1, []string{"A1", "A2"}, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeatRepo_CreateBulkDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seats (screen_id, code, seat_type_id, is_active) VALUES (?, ?, ?, ?),(?, ?, ?, ?)")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewSeatRepo(db).CreateBulk(context.Background(), []model.Seat{
		{ScreenID: 1, Code: "A1", SeatTypeID: 2, IsActive: true},
		{ScreenID: 1, Code: "A2", SeatTypeID: 2, IsActive: true},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo(db)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	const q = "UPDATE payments SET status = ?, updated_at = ? WHERE id = ? AND status = ?"

	mock.ExpectExec(regexp.QuoteMeta(q)).
		WithArgs("SUCCESS", at, 5, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, 5, model.PaymentPending, model.PaymentSuccess, at))

	mock.ExpectExec(regexp.QuoteMeta(q)).
		WithArgs("FAILED", at, 5, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 5, model.PaymentPending, model.PaymentFailed, at), ErrStaleStatus)

	// no statement for a transition the lifecycle forbids
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 5, model.PaymentRefunded, model.PaymentSuccess, at), ErrStaleStatus)
}

func TestPaymentRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo(db)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "payer_id", "amount", "method", "promo_code", "status", "claim_ref",
		"screen_id", "show_id", "seat_codes", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM payments WHERE id = \?$`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), int64(3), "22.50", "CREDIT_CARD", "SAVE10", "PENDING",
			"claim-1", int64(1), int64(7), "A1,A2", created, created))
	p, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "22.50", p.Amount.StringFixed(2))
	assert.Equal(t, model.MethodCreditCard, p.Method)
	require.NotNil(t, p.PromoCode)
	assert.Equal(t, "SAVE10", *p.PromoCode)

	mock.ExpectQuery(`FROM payments WHERE id = \?$`).WithArgs(10).WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tickets WHERE id = ?")).WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 4))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tickets WHERE id = ?")).WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}

func TestTicketRepo_CreateDuplicatePayment(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := NewTicketRepo(db).Create(context.Background(), &model.Ticket{PaymentID: 5})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInClause(t *testing.T) {
	assert.Equal(t, "", inClause(0))
	assert.Equal(t, "?", inClause(1))
	assert.Equal(t, "?, ?, ?", inClause(3))
}
