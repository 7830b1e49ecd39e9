package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/telemetry"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// CheckoutConfig tunes the checkout flow.
type CheckoutConfig struct {
	Hold        time.Duration // seat lock lifetime, also the continuation token lifetime
	TokenSecret string        // HS256 key for continuation tokens
	StaleBatch  int           // payments failed per cleanup pass
}

// DefaultCheckoutConfig returns the settings used when none are configured.
func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{Hold: 5 * time.Minute, StaleBatch: 100}
}

// Checkout drives a checkout attempt from seat selection to ticket.
//
//	Initiated -> SeatsLocked -> PaymentPending -> Confirmed
//	                                           \-> Expired (lock lapses, payment later FAILED)
//
// The attempt is not stored as such: it lives in the seat locks, the
// PENDING payment and the continuation token handed to the payer.
type Checkout struct {
	cfg     CheckoutConfig
	st      Stores
	res     *Reservations
	pricing *Pricing
	notify  dispatcher
	clock   Clock
	log     *zap.Logger
}

// NewCheckout wires a Checkout.
func NewCheckout(cfg CheckoutConfig, st Stores, res *Reservations, pricing *Pricing, notifier Notifier, clock Clock, log *zap.Logger) *Checkout {
	if cfg.StaleBatch <= 0 {
		cfg.StaleBatch = DefaultCheckoutConfig().StaleBatch
	}
	return &Checkout{
		cfg:     cfg,
		st:      st,
		res:     res,
		pricing: pricing,
		notify:  dispatcher{st: st, notifier: notifier, log: log},
		clock:   clock,
		log:     log,
	}
}

// StartRequest is a payer's seat selection.
type StartRequest struct {
	ScreenID  uint64
	ShowID    uint64
	SeatCodes []string
	Method    model.PaymentMethod
	PromoCode string
}

// StartResult is handed back to the payer, who forwards Token to the
// payment gateway.
type StartResult struct {
	Token     string
	Amount    decimal.Decimal
	Subtotal  decimal.Decimal
	Promo     string
	PaymentID uint64
	ExpiresAt time.Time
}

// StartCheckout locks the seats, prices them, records a PENDING payment
// and issues the continuation token.  When a step after locking fails,
// the locks taken by this attempt are released before returning.
func (c *Checkout) StartCheckout(ctx context.Context, caller Caller, req StartRequest) (StartResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.start",
		attribute.Int64("screen_id", int64(req.ScreenID)),
		attribute.Int64("show_id", int64(req.ShowID)),
	)
	defer span.End()

	if caller.AccountID == 0 {
		return StartResult{}, telemetry.Fail(span, validationf("payer is required"))
	}
	if !req.Method.Valid() {
		return StartResult{}, telemetry.Fail(span, validationf("unsupported payment method %q", req.Method))
	}
	codes, err := normalizeSeatCodes(req.SeatCodes)
	if err != nil {
		return StartResult{}, telemetry.Fail(span, err)
	}
	show, err := c.st.Shows.GetByID(ctx, req.ShowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return StartResult{}, telemetry.Fail(span, validationf("unknown show %d", req.ShowID))
		}
		return StartResult{}, telemetry.Fail(span, storage("read show", err))
	}
	if show.ScreenID != req.ScreenID {
		return StartResult{}, telemetry.Fail(span, validationf("show %d does not run on screen %d", show.ID, req.ScreenID))
	}
	if show.Started(c.clock.Now()) {
		return StartResult{}, telemetry.Fail(span, validationf("show %d has already started", show.ID))
	}

	claimant := uuid.NewString()
	until, err := c.res.TryLock(ctx, LockRequest{
		ScreenID:  req.ScreenID,
		ShowID:    req.ShowID,
		SeatCodes: codes,
		Claimant:  claimant,
		Hold:      c.cfg.Hold,
	})
	if err != nil {
		return StartResult{}, telemetry.Fail(span, fmt.Errorf("lock seats: %w", err))
	}

	quote, err := c.pricing.Price(ctx, PriceRequest{
		ScreenID:  req.ScreenID,
		SeatCodes: codes,
		PromoCode: req.PromoCode,
		Method:    req.Method,
	})
	if err != nil {
		c.releaseClaim(ctx, req.ScreenID, codes, claimant)
		return StartResult{}, telemetry.Fail(span, fmt.Errorf("price seats: %w", err))
	}

	now := c.clock.Now()
	payment := &model.Payment{
		PayerID:   caller.AccountID,
		Amount:    quote.Total,
		Method:    req.Method,
		Status:    model.PaymentPending,
		ClaimRef:  claimant,
		ScreenID:  req.ScreenID,
		ShowID:    req.ShowID,
		SeatCodes: utils.JoinSeatCodes(codes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if quote.Promo != "" {
		promo := quote.Promo
		payment.PromoCode = &promo
	}
	if err := c.st.Payments.Create(ctx, payment); err != nil {
		c.releaseClaim(ctx, req.ScreenID, codes, claimant)
		return StartResult{}, telemetry.Fail(span, storage("record payment", err))
	}

	token, err := utils.NewCheckoutToken(c.cfg.TokenSecret, utils.CheckoutClaims{
		PayerID:   caller.AccountID,
		PaymentID: payment.ID,
		ScreenID:  req.ScreenID,
		ShowID:    req.ShowID,
		Seats:     payment.SeatCodes,
		Claimant:  claimant,
	}, now, until)
	if err != nil {
		c.releaseClaim(ctx, req.ScreenID, codes, claimant)
		c.failPayment(ctx, payment.ID)
		return StartResult{}, telemetry.Fail(span, fmt.Errorf("issue continuation token: %w", err))
	}

	c.log.Info("checkout started",
		zap.Uint64("payment_id", payment.ID),
		zap.Uint64("payer_id", caller.AccountID),
		zap.Uint64("show_id", req.ShowID),
		zap.Strings("seats", codes),
		zap.String("amount", quote.Total.StringFixed(2)),
		zap.String("promo", quote.Promo),
		zap.Time("expires_at", until),
	)
	return StartResult{
		Token:     token.Token,
		Amount:    quote.Total,
		Subtotal:  quote.Subtotal,
		Promo:     quote.Promo,
		PaymentID: payment.ID,
		ExpiresAt: until,
	}, nil
}

// ConfirmCheckout completes the attempt carried by a continuation token:
// the seats become permanently booked, the payment turns SUCCESS and one
// ticket is created.  A token whose payment already succeeded returns the
// existing ticket without side effects, so gateway retries are safe.
func (c *Checkout) ConfirmCheckout(ctx context.Context, rawToken string) (TicketView, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.confirm")
	defer span.End()

	claims, err := utils.ParseCheckoutToken(c.cfg.TokenSecret, rawToken)
	if err != nil {
		return TicketView{}, telemetry.Fail(span, fmt.Errorf("%w: %v", ErrTokenInvalid, err))
	}
	span.SetAttributes(attribute.Int64("payment_id", int64(claims.PaymentID)))
	expired := !claims.ExpiresAt.After(c.clock.Now())

	var (
		ticket  *model.Ticket
		payment *model.Payment
		created bool
	)
	err = c.st.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := c.st.Payments.GetForUpdate(ctx, claims.PaymentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: unknown payment %d", ErrTokenInvalid, claims.PaymentID)
			}
			return storage("read payment", err)
		}
		if p.PayerID != claims.PayerID || p.ClaimRef != claims.Claimant {
			return fmt.Errorf("%w: token does not match payment %d", ErrTokenInvalid, p.ID)
		}
		payment = p

		switch p.Status {
		case model.PaymentSuccess:
			t, err := c.st.Tickets.GetByPaymentID(ctx, p.ID)
			if err != nil {
				return storage("read ticket", err)
			}
			ticket = t
			return nil
		case model.PaymentPending:
		default:
			return fmt.Errorf("%w: payment %d is %s", ErrTokenInvalid, p.ID, p.Status)
		}
		if expired {
			return fmt.Errorf("%w: token expired", ErrTokenInvalid)
		}

		codes := utils.SplitSeatCodes(claims.Seats)
		if err := c.res.Finalize(ctx, FinalizeRequest{
			ScreenID:  claims.ScreenID,
			ShowID:    claims.ShowID,
			SeatCodes: codes,
			Claimant:  claims.Claimant,
			AccountID: claims.PayerID,
		}); err != nil {
			return fmt.Errorf("finalize seats: %w", err)
		}
		now := c.clock.Now()
		if err := c.st.Payments.UpdateStatus(ctx, p.ID, model.PaymentPending, model.PaymentSuccess, now); err != nil {
			return storage("mark payment succeeded", err)
		}
		p.Status = model.PaymentSuccess
		t := &model.Ticket{
			PayerID:   claims.PayerID,
			PaymentID: p.ID,
			ScreenID:  claims.ScreenID,
			ShowID:    claims.ShowID,
			SeatCodes: p.SeatCodes,
			CreatedAt: now,
		}
		if err := c.st.Tickets.Create(ctx, t); err != nil {
			return storage("create ticket", err)
		}
		ticket, created = t, true
		return nil
	})
	if err != nil {
		return TicketView{}, telemetry.Fail(span, storage("confirm checkout", err))
	}

	show, err := c.st.Shows.GetByID(ctx, ticket.ShowID)
	if err != nil {
		c.log.Warn("ticket issued without show details",
			zap.Uint64("ticket_id", ticket.ID), zap.Uint64("show_id", ticket.ShowID), zap.Error(err))
	}
	if created {
		c.log.Info("checkout confirmed",
			zap.Uint64("ticket_id", ticket.ID),
			zap.Uint64("payment_id", payment.ID),
			zap.String("seats", ticket.SeatCodes),
		)
		c.notify.send(ctx, noticeConfirmed, *ticket, show, payment)
	} else {
		c.log.Info("checkout confirmation replayed",
			zap.Uint64("ticket_id", ticket.ID),
			zap.Uint64("payment_id", payment.ID),
		)
	}
	return TicketToView(*ticket, show, payment), nil
}

// FailStalePayments marks PENDING payments older than the hold duration
// as FAILED and releases whatever locks their attempt still holds.  It
// returns the number of payments failed.
func (c *Checkout) FailStalePayments(ctx context.Context) (int, error) {
	cutoff := c.clock.Now().Add(-c.cfg.Hold)
	stale, err := c.st.Payments.ListPendingBefore(ctx, cutoff, c.cfg.StaleBatch)
	if err != nil {
		return 0, storage("list stale payments", err)
	}
	failed := 0
	for _, p := range stale {
		err := c.st.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := c.st.Payments.UpdateStatus(ctx, p.ID, model.PaymentPending, model.PaymentFailed, c.clock.Now()); err != nil {
				return err
			}
			return c.res.ReleaseClaim(ctx, p.ScreenID, utils.SplitSeatCodes(p.SeatCodes), p.ClaimRef)
		})
		switch {
		case err == nil:
			failed++
		case errors.Is(err, repository.ErrStaleStatus):
			// confirmed or failed concurrently
		default:
			return failed, storage("fail stale payment", err)
		}
	}
	return failed, nil
}

func (c *Checkout) releaseClaim(ctx context.Context, screenID uint64, codes []string, claimant string) {
	if err := c.res.ReleaseClaim(context.WithoutCancel(ctx), screenID, codes, claimant); err != nil {
		c.log.Error("release seats after failed checkout", zap.String("claimant", claimant), zap.Error(err))
	}
}

func (c *Checkout) failPayment(ctx context.Context, paymentID uint64) {
	err := c.st.Payments.UpdateStatus(context.WithoutCancel(ctx), paymentID, model.PaymentPending, model.PaymentFailed, c.clock.Now())
	if err != nil {
		c.log.Error("mark payment failed", zap.Uint64("payment_id", paymentID), zap.Error(err))
	}
}
