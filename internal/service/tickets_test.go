package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

func TestTickets_ListAndGet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.book(t, "A1")
	second := e.book(t, "A2", "A3")

	list, err := e.tickets.List(ctx, e.caller())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, []string{"A2", "A3"}, list[0].Seats)
	assert.Equal(t, "25.00", list[0].Amount)
	assert.Equal(t, string(model.PaymentSuccess), list[0].Status)
	assert.Equal(t, "Dune: Part Two", list[1].MovieTitle)

	other, err := e.tickets.List(ctx, service.Caller{AccountID: e.other, Role: model.RoleUser})
	require.NoError(t, err)
	assert.Empty(t, other)

	got, err := e.tickets.Get(ctx, e.caller(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentID, got.PaymentID)
	assert.Equal(t, e.show.StartsAt, got.ShowTime)

	_, err = e.tickets.Get(ctx, service.Caller{AccountID: e.other, Role: model.RoleUser}, first.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = e.tickets.Get(ctx, service.Caller{Role: model.RoleAdmin}, first.ID)
	assert.NoError(t, err)
	_, err = e.tickets.Get(ctx, e.caller(), 999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.tickets.List(ctx, service.Caller{})
	assert.ErrorIs(t, err, service.ErrValidation)
}
