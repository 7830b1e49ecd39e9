package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/service"
)

func TestCatalog_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.catalog.CreateScreen(ctx, &model.Screen{Name: " "}), service.ErrValidation)
	assert.ErrorIs(t, e.catalog.CreateScreen(ctx, &model.Screen{Name: "Screen 1"}), service.ErrValidation, "duplicate")
	assert.ErrorIs(t, e.catalog.CreateSeatType(ctx, &model.SeatType{Name: "Free", Price: decimal.NewFromInt(-1)}), service.ErrValidation)

	badShows := []model.Show{
		{ScreenID: e.screen.ID, StartsAt: t0, EndsAt: t0.Add(time.Hour)},
		{ScreenID: e.screen.ID, MovieTitle: "X", StartsAt: t0, EndsAt: t0},
		{ScreenID: e.screen.ID + 5, MovieTitle: "X", StartsAt: t0, EndsAt: t0.Add(time.Hour)},
	}
	for i := range badShows {
		assert.ErrorIs(t, e.catalog.CreateShow(ctx, &badShows[i]), service.ErrValidation)
	}

	bad := save10(t0, t0.Add(time.Hour))
	bad.DiscountPercent = decimal.NewFromInt(101)
	assert.ErrorIs(t, e.catalog.CreatePromo(ctx, &bad), service.ErrValidation)
	bad = save10(t0.Add(time.Hour), t0)
	assert.ErrorIs(t, e.catalog.CreatePromo(ctx, &bad), service.ErrValidation)
}

func TestCatalog_ActivePromosAndShows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addPromo(t, save10(t0.Add(-time.Hour), t0.Add(time.Hour)))
	old := save10(t0.Add(-48*time.Hour), t0.Add(-24*time.Hour))
	old.Code = "old"
	e.addPromo(t, old)

	promos, err := e.catalog.ActivePromos(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "SAVE10", promos[0].Code)

	shows, err := e.catalog.Shows(ctx, e.screen.ID)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, e.show.ID, shows[0].ID)
}

func TestCatalog_SearchShows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	later := model.Show{ScreenID: e.screen.ID, MovieTitle: "Paddington", StartsAt: t0.Add(48 * time.Hour), EndsAt: t0.Add(50 * time.Hour)}
	require.NoError(t, e.catalog.CreateShow(ctx, &later))
	past := model.Show{ScreenID: e.screen.ID, MovieTitle: "Dune", StartsAt: t0.Add(-3 * time.Hour), EndsAt: t0.Add(-time.Hour)}
	require.NoError(t, e.catalog.CreateShow(ctx, &past))

	shows, total, err := e.catalog.SearchShows(ctx, repository.ShowSearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint64{e.show.ID, later.ID}, []uint64{shows[0].ID, shows[1].ID})

	shows, total, err = e.catalog.SearchShows(ctx, repository.ShowSearchQuery{Title: "dune", TimeFilter: "any"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, past.ID, shows[0].ID)

	shows, total, err = e.catalog.SearchShows(ctx, repository.ShowSearchQuery{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, shows, 1)
	assert.Equal(t, later.ID, shows[0].ID)

	_, _, err = e.catalog.SearchShows(ctx, repository.ShowSearchQuery{TimeFilter: "tomorrow"})
	assert.ErrorIs(t, err, service.ErrValidation)
}
