package service

import (
	"context"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// Clock supplies the current time.  Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

// TxRunner runs fn inside one storage transaction.  Repositories called
// with the context handed to fn take part in that transaction; nested
// calls join the outer transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeatStore is the inventory store.  Only Reservations and Seating use it
// to write seat state.  Reads taking a showID attach the seat's booking
// for that show; showID 0 attaches none.
type SeatStore interface {
	// GetForUpdate returns the seats among codes that exist on the screen,
	// row-locked until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error)
	ListByCodes(ctx context.Context, screenID, showID uint64, codes []string) ([]model.Seat, error)
	ListByScreen(ctx context.Context, screenID, showID uint64) ([]model.Seat, error)
	// LockScreen row-locks every seat of the screen.
	LockScreen(ctx context.Context, screenID uint64) ([]model.Seat, error)
	// CountLiveBookings counts bookings on the screen for shows not ended by now.
	CountLiveBookings(ctx context.Context, screenID uint64, now time.Time) (int64, error)
	SetLock(ctx context.Context, screenID uint64, codes []string, claimant string, showID uint64, until time.Time) error
	// ClearLock clears lock fields on codes; a non-empty claimant limits the
	// update to seats still locked by it.
	ClearLock(ctx context.Context, screenID uint64, codes []string, claimant string) (int64, error)
	// Assign books the seats for one show and clears their locks.
	Assign(ctx context.Context, screenID uint64, codes []string, showID, accountID uint64, at time.Time) error
	Unassign(ctx context.Context, screenID uint64, codes []string, showID uint64) (int64, error)
	ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error)
	ClearFinishedAssignments(ctx context.Context, now time.Time) (int64, error)
	CreateBulk(ctx context.Context, seats []model.Seat) error
	DeleteByScreen(ctx context.Context, screenID uint64) (int64, error)
}

// SeatTypeStore reads and writes price tiers.
type SeatTypeStore interface {
	Create(ctx context.Context, st *model.SeatType) error
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.SeatType, error)
	List(ctx context.Context) ([]model.SeatType, error)
}

// PromoStore reads and writes promo codes.
type PromoStore interface {
	Create(ctx context.Context, p *model.Promo) error
	GetByCode(ctx context.Context, code string) (*model.Promo, error)
	ListActive(ctx context.Context, at time.Time) ([]model.Promo, error)
}

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uint64) (*model.Payment, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Payment, error)
	// UpdateStatus moves the payment from one status to another and
	// reports ErrStaleStatus when the stored status is not from.
	UpdateStatus(ctx context.Context, id uint64, from, to model.PaymentStatus, at time.Time) error
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.Payment, error)
}

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetByPaymentID(ctx context.Context, paymentID uint64) (*model.Ticket, error)
	ListByPayer(ctx context.Context, payerID uint64) ([]model.Ticket, error)
	// Delete removes the ticket and reports ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id uint64) error
}

// ShowStore reads and writes shows.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	ListByScreen(ctx context.Context, screenID uint64, from time.Time) ([]model.Show, error)
	Search(ctx context.Context, q repository.ShowSearchQuery, now time.Time) ([]model.Show, int64, error)
}

// ScreenStore reads and writes screens.
type ScreenStore interface {
	Create(ctx context.Context, s *model.Screen) error
	GetByID(ctx context.Context, id uint64) (*model.Screen, error)
	List(ctx context.Context) ([]model.Screen, error)
}

// AccountStore resolves accounts for notifications.
type AccountStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Notifier dispatches booking notifications.  Delivery is fire-and-forget
// from the engine's point of view: errors are logged, never retried here.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n BookingNotice) error
	BookingCancelled(ctx context.Context, n BookingNotice) error
}

// BookingNotice is what a notification needs to address and describe a
// booking without reading the database again.
type BookingNotice struct {
	TicketID   uint64
	AccountID  uint64
	Email      string
	FullName   string
	MovieTitle string
	ShowTime   time.Time
	ScreenName string
	Seats      []string
	Amount     string
}
