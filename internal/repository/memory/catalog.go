package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

type seatTypeTable struct{ s *Store }

func (t seatTypeTable) Create(ctx context.Context, st *model.SeatType) error {
	return t.s.do(ctx, func(s *state) error {
		for _, existing := range s.seatTypes {
			if existing.Name == st.Name {
				return repository.ErrConflict
			}
		}
		st.ID = s.id("seat_types")
		s.seatTypes[st.ID] = *st
		return nil
	})
}

func (t seatTypeTable) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.SeatType, error) {
	out := make(map[uint64]model.SeatType, len(ids))
	err := t.s.do(ctx, func(s *state) error {
		for _, id := range ids {
			if st, ok := s.seatTypes[id]; ok {
				out[id] = st
			}
		}
		return nil
	})
	return out, err
}

func (t seatTypeTable) List(ctx context.Context) ([]model.SeatType, error) {
	var out []model.SeatType
	err := t.s.do(ctx, func(s *state) error {
		for _, st := range s.seatTypes {
			out = append(out, st)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.SeatType) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, err
}

type screenTable struct{ s *Store }

func (t screenTable) Create(ctx context.Context, sc *model.Screen) error {
	return t.s.do(ctx, func(s *state) error {
		for _, existing := range s.screens {
			if existing.Name == sc.Name {
				return repository.ErrConflict
			}
		}
		sc.ID = s.id("screens")
		s.screens[sc.ID] = *sc
		return nil
	})
}

func (t screenTable) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	var out model.Screen
	err := t.s.do(ctx, func(s *state) error {
		sc, ok := s.screens[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t screenTable) List(ctx context.Context) ([]model.Screen, error) {
	var out []model.Screen
	err := t.s.do(ctx, func(s *state) error {
		for _, sc := range s.screens {
			out = append(out, sc)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Screen) int { return cmp.Compare(a.Name, b.Name) })
	return out, err
}

type showTable struct{ s *Store }

func (t showTable) Create(ctx context.Context, sh *model.Show) error {
	return t.s.do(ctx, func(s *state) error {
		sh.ID = s.id("shows")
		s.shows[sh.ID] = *sh
		return nil
	})
}

func (t showTable) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	var out model.Show
	err := t.s.do(ctx, func(s *state) error {
		sh, ok := s.shows[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t showTable) ListByScreen(ctx context.Context, screenID uint64, from time.Time) ([]model.Show, error) {
	var out []model.Show
	err := t.s.do(ctx, func(s *state) error {
		for _, sh := range s.shows {
			if sh.ScreenID == screenID && sh.EndsAt.After(from) {
				out = append(out, sh)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Show) int { return a.StartsAt.Compare(b.StartsAt) })
	return out, err
}

func (t showTable) Search(ctx context.Context, q repository.ShowSearchQuery, now time.Time) ([]model.Show, int64, error) {
	var out []model.Show
	err := t.s.do(ctx, func(s *state) error {
		for _, sh := range s.shows {
			if q.Matches(sh, s.screens[sh.ScreenID].Name, now) {
				out = append(out, sh)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Show) int {
		if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	total := int64(len(out))
	start := min((q.Page-1)*q.PageSize, len(out))
	end := min(start+q.PageSize, len(out))
	return out[start:end], total, err
}

type promoTable struct{ s *Store }

func (t promoTable) Create(ctx context.Context, p *model.Promo) error {
	return t.s.do(ctx, func(s *state) error {
		if _, dup := s.promos[p.Code]; dup {
			return repository.ErrConflict
		}
		s.promos[p.Code] = *p
		return nil
	})
}

func (t promoTable) GetByCode(ctx context.Context, code string) (*model.Promo, error) {
	var out model.Promo
	err := t.s.do(ctx, func(s *state) error {
		p, ok := s.promos[code]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t promoTable) ListActive(ctx context.Context, at time.Time) ([]model.Promo, error) {
	var out []model.Promo
	err := t.s.do(ctx, func(s *state) error {
		for _, p := range s.promos {
			if !at.Before(p.ValidFrom) && !at.After(p.ValidTo) {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Promo) int {
		if c := a.ValidTo.Compare(b.ValidTo); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out, err
}
