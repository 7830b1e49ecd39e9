package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

// seatMapInvalidator drops cached seat maps of a screen after its seat
// state changed.  *middleware.SeatMapCache implements it and is nil-safe.
type seatMapInvalidator interface {
	Invalidate(ctx context.Context, screenID uint64)
}

// CheckoutHandler serves the payer's checkout request and the payment
// gateway callback.
type CheckoutHandler struct {
	Checkout *service.Checkout
	Cache    seatMapInvalidator
	Log      *zap.Logger
}

func NewCheckoutHandler(co *service.Checkout, cache seatMapInvalidator, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Checkout: co, Cache: cache, Log: log}
}

type checkoutReq struct {
	ScreenID      uint64   `json:"screen_id"`
	ShowID        uint64   `json:"show_id"`
	Seats         []string `json:"seats"`
	PaymentMethod string   `json:"payment_method"`
	PromoCode     string   `json:"promo_code"`
}

type checkoutResp struct {
	ClientToken string    `json:"client_token"`
	PaymentID   uint64    `json:"payment_id"`
	Subtotal    string    `json:"subtotal"`
	Amount      string    `json:"amount"`
	PromoCode   string    `json:"promo_code,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Start locks the selected seats and returns the continuation token the
// payer hands to the payment gateway.
func (h *CheckoutHandler) Start(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ScreenID == 0 || req.ShowID == 0 || len(req.Seats) == 0 {
		return badRequest(c, "screen_id, show_id and seats are required")
	}

	ctx := c.Request().Context()
	res, err := h.Checkout.StartCheckout(ctx, middleware.CallerFrom(c), service.StartRequest{
		ScreenID:  req.ScreenID,
		ShowID:    req.ShowID,
		SeatCodes: req.Seats,
		Method:    model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, req.ScreenID)
	return c.JSON(http.StatusCreated, checkoutResp{
		ClientToken: res.Token,
		PaymentID:   res.PaymentID,
		Subtotal:    res.Subtotal.StringFixedBank(2),
		Amount:      res.Amount.StringFixed(2),
		PromoCode:   res.Promo,
		ExpiresAt:   res.ExpiresAt,
	})
}

type generateReq struct {
	ClientToken string `json:"client_token"`
}

// Generate is called by the payment gateway once the payer paid.  It
// confirms the checkout and returns the ticket; repeating the call with
// the same token returns the same ticket.
func (h *CheckoutHandler) Generate(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	token := strings.TrimSpace(req.ClientToken)
	if token == "" {
		return badRequest(c, "client_token required")
	}

	ctx := c.Request().Context()
	ticket, err := h.Checkout.ConfirmCheckout(ctx, token)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, ticket.ScreenID)
	return c.JSON(http.StatusOK, ticket)
}
