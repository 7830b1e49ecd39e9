package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository/memory"
	"github.com/iliyamo/movie-booking/internal/service"
)

const tokenSecret = "checkout-test-secret"

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) BookingConfirmed(ctx context.Context, n service.BookingNotice) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotifier) BookingCancelled(ctx context.Context, n service.BookingNotice) error {
	return m.Called(ctx, n).Error(0)
}

// env is a fully wired engine over the in-memory store with one screen,
// two seat types and a show starting a day after t0.
//
//	A1 Regular 10.00   A2 Premium 15.00   A3..A5 Regular   B1 inactive
type env struct {
	store    *memory.Store
	st       service.Stores
	clock    *fakeClock
	notifier *mockNotifier

	res          *service.Reservations
	pricing      *service.Pricing
	checkout     *service.Checkout
	cancellation *service.Cancellation
	tickets      *service.Tickets
	catalog      *service.Catalog
	seating      *service.Seating

	screen  model.Screen
	regular model.SeatType
	premium model.SeatType
	show    model.Show
	payer   uint64
	other   uint64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	e := &env{
		store:    store,
		st:       store.Stores(),
		clock:    &fakeClock{now: t0},
		notifier: &mockNotifier{},
	}
	log := zap.NewNop()
	e.res = service.NewReservations(e.st.Tx, e.st.Seats, e.clock, log)
	e.pricing = service.NewPricing(e.st.Seats, e.st.SeatTypes, e.st.Promos, e.clock, log)
	e.checkout = service.NewCheckout(service.CheckoutConfig{Hold: 5 * time.Minute, TokenSecret: tokenSecret}, e.st, e.res, e.pricing, e.notifier, e.clock, log)
	e.cancellation = service.NewCancellation(e.st, e.res, e.notifier, e.clock, 6*time.Hour, log)
	e.tickets = service.NewTickets(e.st)
	e.catalog = service.NewCatalog(e.st, e.clock, log)
	e.seating = service.NewSeating(e.st, e.res, e.clock, log)

	e.screen = model.Screen{Name: "Screen 1", DisplayTech: "4K"}
	require.NoError(t, e.catalog.CreateScreen(ctx, &e.screen))
	e.regular = model.SeatType{Name: "Regular", Price: decimal.RequireFromString("10.00")}
	require.NoError(t, e.catalog.CreateSeatType(ctx, &e.regular))
	e.premium = model.SeatType{Name: "Premium", Price: decimal.RequireFromString("15.00")}
	require.NoError(t, e.catalog.CreateSeatType(ctx, &e.premium))

	seats := []model.Seat{
		{ScreenID: e.screen.ID, Code: "A1", SeatTypeID: e.regular.ID, IsActive: true},
		{ScreenID: e.screen.ID, Code: "A2", SeatTypeID: e.premium.ID, IsActive: true},
		{ScreenID: e.screen.ID, Code: "A3", SeatTypeID: e.regular.ID, IsActive: true},
		{ScreenID: e.screen.ID, Code: "A4", SeatTypeID: e.regular.ID, IsActive: true},
		{ScreenID: e.screen.ID, Code: "A5", SeatTypeID: e.regular.ID, IsActive: true},
		{ScreenID: e.screen.ID, Code: "B1", SeatTypeID: e.regular.ID, IsActive: false},
	}
	require.NoError(t, e.st.Seats.CreateBulk(ctx, seats))

	e.show = model.Show{
		ScreenID:   e.screen.ID,
		MovieTitle: "Dune: Part Two",
		StartsAt:   t0.Add(24 * time.Hour),
		EndsAt:     t0.Add(27 * time.Hour),
	}
	require.NoError(t, e.catalog.CreateShow(ctx, &e.show))

	var err error
	e.payer, err = store.Users().Create(ctx, "payer@example.com", "Pat Payer", "secret-pass", model.RoleUser, 4)
	require.NoError(t, err)
	e.other, err = store.Users().Create(ctx, "other@example.com", "Oli Other", "secret-pass", model.RoleUser, 4)
	require.NoError(t, err)
	return e
}

func (e *env) caller() service.Caller {
	return service.Caller{AccountID: e.payer, Role: model.RoleUser}
}

func (e *env) addPromo(t *testing.T, p model.Promo) {
	t.Helper()
	require.NoError(t, e.catalog.CreatePromo(context.Background(), &p))
}

// seat reads a seat of the env screen as seen by the env show.
func (e *env) seat(t *testing.T, code string) model.Seat {
	t.Helper()
	return e.seatFor(t, e.show.ID, code)
}

func (e *env) seatFor(t *testing.T, showID uint64, code string) model.Seat {
	t.Helper()
	seats, err := e.st.Seats.ListByCodes(context.Background(), e.screen.ID, showID, []string{code})
	require.NoError(t, err)
	require.Len(t, seats, 1)
	return seats[0]
}

// laterShow adds a show on the env screen starting offset after t0.
func (e *env) laterShow(t *testing.T, offset time.Duration) model.Show {
	t.Helper()
	show := model.Show{
		ScreenID:   e.screen.ID,
		MovieTitle: "Arrival",
		StartsAt:   t0.Add(offset),
		EndsAt:     t0.Add(offset + 2*time.Hour),
	}
	require.NoError(t, e.catalog.CreateShow(context.Background(), &show))
	return show
}

func (e *env) lockReq(claimant string, codes ...string) service.LockRequest {
	return service.LockRequest{
		ScreenID:  e.screen.ID,
		ShowID:    e.show.ID,
		SeatCodes: codes,
		Claimant:  claimant,
		Hold:      5 * time.Minute,
	}
}

// book runs a full checkout for the payer and returns the ticket.
func (e *env) book(t *testing.T, codes ...string) service.TicketView {
	t.Helper()
	return e.bookShow(t, e.show.ID, codes...)
}

func (e *env) bookShow(t *testing.T, showID uint64, codes ...string) service.TicketView {
	t.Helper()
	e.notifier.On("BookingConfirmed", mock.Anything, mock.Anything).Return(nil).Maybe()
	ctx := context.Background()
	start, err := e.checkout.StartCheckout(ctx, e.caller(), service.StartRequest{
		ScreenID:  e.screen.ID,
		ShowID:    showID,
		SeatCodes: codes,
		Method:    model.MethodCreditCard,
	})
	require.NoError(t, err)
	ticket, err := e.checkout.ConfirmCheckout(ctx, start.Token)
	require.NoError(t, err)
	return ticket
}
