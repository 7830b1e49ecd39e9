package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// Pricing computes payable amounts from seat types and promo codes.
type Pricing struct {
	seats  SeatStore
	types  SeatTypeStore
	promos PromoStore
	clock  Clock
	log    *zap.Logger
}

// NewPricing wires a Pricing over the given stores.
func NewPricing(seats SeatStore, types SeatTypeStore, promos PromoStore, clock Clock, log *zap.Logger) *Pricing {
	return &Pricing{seats: seats, types: types, promos: promos, clock: clock, log: log}
}

// PriceRequest names the seats to price and how they will be paid.
type PriceRequest struct {
	ScreenID  uint64
	SeatCodes []string
	PromoCode string
	Method    model.PaymentMethod
}

// Quote is the outcome of pricing a seat batch.
type Quote struct {
	Subtotal decimal.Decimal // sum of seat type prices
	Discount decimal.Decimal // Subtotal - Total
	Total    decimal.Decimal // amount to pay, 2 decimal places
	Promo    string          // promo applied, empty when none
}

// Price sums the seat type prices of the batch and applies the promo if
// every eligibility predicate holds.  The discount is applied once on the
// subtotal and rounded half-to-even to cents.  An unknown, expired or
// otherwise ineligible promo is ignored and the subtotal is charged.
func (p *Pricing) Price(ctx context.Context, req PriceRequest) (Quote, error) {
	codes, err := normalizeSeatCodes(req.SeatCodes)
	if err != nil {
		return Quote{}, err
	}
	seats, err := p.seats.ListByCodes(ctx, req.ScreenID, 0, codes)
	if err != nil {
		return Quote{}, storage("read seats", err)
	}
	if missing := unavailable(seats, codes, func(model.Seat) bool { return true }); len(missing) > 0 {
		return Quote{}, validationf("unknown seats %s", strings.Join(missing, ","))
	}

	ids := make([]uint64, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.SeatTypeID)
	}
	types, err := p.types.GetByIDs(ctx, ids)
	if err != nil {
		return Quote{}, storage("read seat types", err)
	}
	subtotal := decimal.Zero
	for _, s := range seats {
		st, ok := types[s.SeatTypeID]
		if !ok {
			return Quote{}, validationf("seat %s has unknown seat type %d", s.Code, s.SeatTypeID)
		}
		subtotal = subtotal.Add(st.Price)
	}

	total := subtotal.RoundBank(2)
	q := Quote{Subtotal: subtotal, Discount: subtotal.Sub(total), Total: total}
	code := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	if code == "" {
		return q, nil
	}
	promo, err := p.promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			p.log.Debug("promo ignored", zap.String("promo", code), zap.String("reason", "unknown"))
			return q, nil
		}
		return Quote{}, storage("read promo", err)
	}
	if !promo.AppliesTo(subtotal, req.Method, p.clock.Now()) {
		p.log.Debug("promo ignored", zap.String("promo", code), zap.String("reason", "not eligible"))
		return q, nil
	}
	return applyDiscount(subtotal, promo.DiscountPercent, promo.Code), nil
}

// applyDiscount computes subtotal * (1 - pct/100) with banker's rounding.
func applyDiscount(subtotal, pct decimal.Decimal, code string) Quote {
	factor := decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
	total := subtotal.Mul(factor).RoundBank(2)
	return Quote{
		Subtotal: subtotal,
		Discount: subtotal.Sub(total),
		Total:    total,
		Promo:    code,
	}
}
