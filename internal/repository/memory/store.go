// Package memory is an in-process implementation of the booking storage
// ports.  Transactions are serialized behind one mutex and roll back by
// restoring a snapshot, which gives the same all-or-nothing and
// no-double-booking behaviour as the MySQL backend.  It backs STORE=memory
// deployments and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

type seatKey struct {
	screenID uint64
	code     string
}

type showSeatKey struct {
	seatKey
	showID uint64
}

type refreshToken struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type state struct {
	seats     map[seatKey]model.Seat
	showSeats map[showSeatKey]model.ShowSeat
	seatTypes map[uint64]model.SeatType
	screens   map[uint64]model.Screen
	shows     map[uint64]model.Show
	promos    map[string]model.Promo
	payments  map[uint64]model.Payment
	tickets   map[uint64]model.Ticket
	users     map[uint64]model.User
	tokens    map[string]refreshToken
	nextID    map[string]uint64
}

func newState() state {
	return state{
		seats:     make(map[seatKey]model.Seat),
		showSeats: make(map[showSeatKey]model.ShowSeat),
		seatTypes: make(map[uint64]model.SeatType),
		screens:   make(map[uint64]model.Screen),
		shows:     make(map[uint64]model.Show),
		promos:    make(map[string]model.Promo),
		payments:  make(map[uint64]model.Payment),
		tickets:   make(map[uint64]model.Ticket),
		users:     make(map[uint64]model.User),
		tokens:    make(map[string]refreshToken),
		nextID:    make(map[string]uint64),
	}
}

// clone copies every table.  Records are values whose pointer fields are
// replaced, never written through, so a shallow copy per map suffices.
func (s state) clone() state {
	return state{
		seats:     maps.Clone(s.seats),
		showSeats: maps.Clone(s.showSeats),
		seatTypes: maps.Clone(s.seatTypes),
		screens:   maps.Clone(s.screens),
		shows:     maps.Clone(s.shows),
		promos:    maps.Clone(s.promos),
		payments:  maps.Clone(s.payments),
		tickets:   maps.Clone(s.tickets),
		users:     maps.Clone(s.users),
		tokens:    maps.Clone(s.tokens),
		nextID:    maps.Clone(s.nextID),
	}
}

func (s *state) id(table string) uint64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Store holds all tables.
type Store struct {
	mu sync.Mutex
	st state
}

// New returns an empty Store.
func New() *Store { return &Store{st: newState()} }

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// WithinTx runs fn while holding the store lock.  When fn fails every
// change it made is discarded.  Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

// do runs fn against the tables, taking the lock unless ctx already
// belongs to one of this store's transactions.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

// Stores exposes the store through the service ports.
func (s *Store) Stores() service.Stores {
	return service.Stores{
		Tx:        s,
		Seats:     seatTable{s},
		SeatTypes: seatTypeTable{s},
		Promos:    promoTable{s},
		Payments:  paymentTable{s},
		Tickets:   ticketTable{s},
		Shows:     showTable{s},
		Screens:   screenTable{s},
		Accounts:  Users{s},
	}
}

// Users returns the account table.
func (s *Store) Users() Users { return Users{s} }

// Tokens returns the refresh token table.
func (s *Store) Tokens() Tokens { return Tokens{s} }
