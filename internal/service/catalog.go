package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// Catalog administers screens, seat types, shows and promos.
type Catalog struct {
	st    Stores
	clock Clock
	log   *zap.Logger
}

// NewCatalog wires a Catalog.
func NewCatalog(st Stores, clock Clock, log *zap.Logger) *Catalog {
	return &Catalog{st: st, clock: clock, log: log}
}

// CreateScreen stores a new screen.  Names are unique.
func (c *Catalog) CreateScreen(ctx context.Context, s *model.Screen) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return validationf("screen name is required")
	}
	s.IsActive = true
	s.CreatedAt = c.clock.Now()
	if err := c.st.Screens.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return validationf("screen %q already exists", s.Name)
		}
		return storage("create screen", err)
	}
	c.log.Info("screen created", zap.Uint64("screen_id", s.ID), zap.String("name", s.Name))
	return nil
}

// Screens lists all screens.
func (c *Catalog) Screens(ctx context.Context) ([]model.Screen, error) {
	out, err := c.st.Screens.List(ctx)
	return out, storage("list screens", err)
}

// CreateSeatType stores a new price tier.
func (c *Catalog) CreateSeatType(ctx context.Context, st *model.SeatType) error {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return validationf("seat type name is required")
	}
	if st.Price.IsNegative() {
		return validationf("price must not be negative")
	}
	st.Price = st.Price.Round(2)
	if err := c.st.SeatTypes.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return validationf("seat type %q already exists", st.Name)
		}
		return storage("create seat type", err)
	}
	return nil
}

// SeatTypes lists all price tiers.
func (c *Catalog) SeatTypes(ctx context.Context) ([]model.SeatType, error) {
	out, err := c.st.SeatTypes.List(ctx)
	return out, storage("list seat types", err)
}

// CreateShow schedules a show on an active screen.
func (c *Catalog) CreateShow(ctx context.Context, s *model.Show) error {
	s.MovieTitle = strings.TrimSpace(s.MovieTitle)
	switch {
	case s.MovieTitle == "":
		return validationf("movie title is required")
	case s.StartsAt.IsZero():
		return validationf("start time is required")
	case !s.EndsAt.After(s.StartsAt):
		return validationf("end time must be after start time")
	}
	screen, err := c.st.Screens.GetByID(ctx, s.ScreenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationf("unknown screen %d", s.ScreenID)
		}
		return storage("read screen", err)
	}
	if !screen.IsActive {
		return validationf("screen %d is inactive", s.ScreenID)
	}
	s.StartsAt, s.EndsAt = s.StartsAt.UTC(), s.EndsAt.UTC()
	s.CreatedAt = c.clock.Now()
	if err := c.st.Shows.Create(ctx, s); err != nil {
		return storage("create show", err)
	}
	c.log.Info("show created", zap.Uint64("show_id", s.ID), zap.Uint64("screen_id", s.ScreenID))
	return nil
}

// Shows lists the screen's shows that have not ended yet.
func (c *Catalog) Shows(ctx context.Context, screenID uint64) ([]model.Show, error) {
	out, err := c.st.Shows.ListByScreen(ctx, screenID, c.clock.Now())
	return out, storage("list shows", err)
}

// CreatePromo stores a promo code.  Codes are stored upper-case.
func (c *Catalog) CreatePromo(ctx context.Context, p *model.Promo) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	switch {
	case p.Code == "":
		return validationf("promo code is required")
	case p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(decimal.NewFromInt(100)):
		return validationf("discount percent must be between 0 and 100")
	case p.MinimumPurchase.IsNegative():
		return validationf("minimum purchase must not be negative")
	case !p.AllowedMethod.Valid():
		return validationf("unsupported payment method %q", p.AllowedMethod)
	case p.ValidTo.Before(p.ValidFrom):
		return validationf("promo validity window ends before it starts")
	}
	if err := c.st.Promos.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return validationf("promo %s already exists", p.Code)
		}
		return storage("create promo", err)
	}
	c.log.Info("promo created", zap.String("promo", p.Code),
		zap.String("discount_percent", p.DiscountPercent.String()),
		zap.Time("valid_to", p.ValidTo))
	return nil
}

// ActivePromos lists promos whose validity window contains now.
func (c *Catalog) ActivePromos(ctx context.Context) ([]model.Promo, error) {
	out, err := c.st.Promos.ListActive(ctx, c.clock.Now())
	return out, storage("list promos", err)
}

// Show returns one show.
func (c *Catalog) Show(ctx context.Context, id uint64) (*model.Show, error) {
	s, err := c.st.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: show %d", ErrNotFound, id)
		}
		return nil, storage("read show", err)
	}
	return s, nil
}

// SearchShows pages through shows by title, screen name and time filter.
// Page defaults to 1 and page size to 20, capped at 100.
func (c *Catalog) SearchShows(ctx context.Context, q repository.ShowSearchQuery) ([]model.Show, int64, error) {
	q.Title, q.Screen = strings.TrimSpace(q.Title), strings.TrimSpace(q.Screen)
	switch strings.ToLower(strings.TrimSpace(q.TimeFilter)) {
	case "", repository.ShowsUpcoming:
		q.TimeFilter = repository.ShowsUpcoming
	case repository.ShowsActive, repository.ShowsAny:
		q.TimeFilter = strings.ToLower(strings.TrimSpace(q.TimeFilter))
	default:
		return nil, 0, validationf("unknown time filter %q", q.TimeFilter)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	out, total, err := c.st.Shows.Search(ctx, q, c.clock.Now())
	return out, total, storage("search shows", err)
}
