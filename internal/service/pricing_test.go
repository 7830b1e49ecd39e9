package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

func save10(from, to time.Time) model.Promo {
	return model.Promo{
		Code:            "SAVE10",
		DiscountPercent: decimal.NewFromInt(10),
		MinimumPurchase: decimal.NewFromInt(20),
		AllowedMethod:   model.MethodCreditCard,
		ValidFrom:       from,
		ValidTo:         to,
	}
}

func TestPrice_PromoApplied(t *testing.T) {
	e := newEnv(t)
	e.addPromo(t, save10(t0.Add(-time.Hour), t0.Add(time.Hour)))

	q, err := e.pricing.Price(context.Background(), service.PriceRequest{
		ScreenID:  e.screen.ID,
		SeatCodes: []string{"A1", "A2"},
		PromoCode: "save10",
		Method:    model.MethodCreditCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "22.50", q.Total.StringFixed(2))
	assert.Equal(t, "2.50", q.Discount.StringFixed(2))
	assert.Equal(t, "SAVE10", q.Promo)
}

func TestPrice_PromoIgnoredUnlessEveryPredicateHolds(t *testing.T) {
	cases := []struct {
		name   string
		promo  func() model.Promo
		seats  []string
		method model.PaymentMethod
		code   string
	}{
		{
			name:   "unknown code",
			promo:  func() model.Promo { return save10(t0.Add(-time.Hour), t0.Add(time.Hour)) },
			seats:  []string{"A1", "A2"},
			method: model.MethodCreditCard,
			code:   "NOPE",
		},
		{
			name:   "window not started",
			promo:  func() model.Promo { return save10(t0.Add(time.Minute), t0.Add(time.Hour)) },
			seats:  []string{"A1", "A2"},
			method: model.MethodCreditCard,
			code:   "SAVE10",
		},
		{
			name:   "window over",
			promo:  func() model.Promo { return save10(t0.Add(-2*time.Hour), t0.Add(-time.Second)) },
			seats:  []string{"A1", "A2"},
			method: model.MethodCreditCard,
			code:   "SAVE10",
		},
		{
			name:   "other method",
			promo:  func() model.Promo { return save10(t0.Add(-time.Hour), t0.Add(time.Hour)) },
			seats:  []string{"A1", "A2"},
			method: model.MethodUPI,
			code:   "SAVE10",
		},
		{
			name:   "below minimum",
			promo:  func() model.Promo { return save10(t0.Add(-time.Hour), t0.Add(time.Hour)) },
			seats:  []string{"A2"},
			method: model.MethodCreditCard,
			code:   "SAVE10",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.addPromo(t, tc.promo())
			q, err := e.pricing.Price(context.Background(), service.PriceRequest{
				ScreenID:  e.screen.ID,
				SeatCodes: tc.seats,
				PromoCode: tc.code,
				Method:    tc.method,
			})
			require.NoError(t, err)
			assert.True(t, q.Total.Equal(q.Subtotal))
			assert.Empty(t, q.Promo)
		})
	}
}

func TestPrice_WindowIsInclusive(t *testing.T) {
	e := newEnv(t)
	e.addPromo(t, save10(t0.Add(-time.Hour), t0))

	q, err := e.pricing.Price(context.Background(), service.PriceRequest{
		ScreenID: e.screen.ID, SeatCodes: []string{"A1", "A2"}, PromoCode: "SAVE10", Method: model.MethodCreditCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "22.50", q.Total.StringFixed(2))
}

func TestPrice_BankersRounding(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// 12.5% of 10.00 + 15.00 + 10.00 = 35.00 -> 30.625 -> 30.62 (half to even)
	e.addPromo(t, model.Promo{
		Code:            "EIGHTH",
		DiscountPercent: decimal.RequireFromString("12.5"),
		MinimumPurchase: decimal.Zero,
		AllowedMethod:   model.MethodUPI,
		ValidFrom:       t0.Add(-time.Hour),
		ValidTo:         t0.Add(time.Hour),
	})
	q, err := e.pricing.Price(ctx, service.PriceRequest{
		ScreenID: e.screen.ID, SeatCodes: []string{"A1", "A2", "A3"}, PromoCode: "EIGHTH", Method: model.MethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, "35.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "30.62", q.Total.StringFixed(2))
}

func TestPrice_UnknownSeat(t *testing.T) {
	e := newEnv(t)
	_, err := e.pricing.Price(context.Background(), service.PriceRequest{
		ScreenID: e.screen.ID, SeatCodes: []string{"A1", "Z9"}, Method: model.MethodUPI,
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestPrice_RoundsOnlyTheTotal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	odd := model.SeatType{Name: "Odd", Price: decimal.RequireFromString("10.125")}
	require.NoError(t, e.st.SeatTypes.Create(ctx, &odd))
	id := e.newScreen(t, "Screen 2")
	require.NoError(t, e.st.Seats.CreateBulk(ctx, []model.Seat{
		{ScreenID: id, Code: "A1", SeatTypeID: odd.ID, IsActive: true},
	}))

	q, err := e.pricing.Price(ctx, service.PriceRequest{ScreenID: id, SeatCodes: []string{"A1"}, Method: model.MethodUPI})
	require.NoError(t, err)
	assert.Equal(t, "10.125", q.Subtotal.String())
	assert.Equal(t, "10.12", q.Total.StringFixed(2), "half to even, once")
}
