package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

// PublicHandler serves the unauthenticated browse endpoints.
type PublicHandler struct {
	Catalog *service.Catalog
	Seating *service.Seating
	Log     *zap.Logger
}

func NewPublicHandler(cat *service.Catalog, seating *service.Seating, log *zap.Logger) *PublicHandler {
	return &PublicHandler{Catalog: cat, Seating: seating, Log: log}
}

type showView struct {
	ID         uint64    `json:"id"`
	ScreenID   uint64    `json:"screen_id"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

func toShowView(s model.Show) showView {
	return showView{ID: s.ID, ScreenID: s.ScreenID, MovieTitle: s.MovieTitle, StartsAt: s.StartsAt, EndsAt: s.EndsAt}
}

type promoView struct {
	Code            string    `json:"code"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent string    `json:"discount_percent"`
	MinimumPurchase string    `json:"minimum_purchase"`
	AllowedMethod   string    `json:"allowed_method"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidTo         time.Time `json:"valid_to"`
}

func toPromoView(p model.Promo) promoView {
	return promoView{
		Code:            p.Code,
		Description:     p.Description,
		DiscountPercent: p.DiscountPercent.String(),
		MinimumPurchase: p.MinimumPurchase.StringFixed(2),
		AllowedMethod:   string(p.AllowedMethod),
		ValidFrom:       p.ValidFrom,
		ValidTo:         p.ValidTo,
	}
}

// SeatMap returns the state of every seat of a screen, optionally for
// one show (?show_id=).
func (h *PublicHandler) SeatMap(c echo.Context) error {
	screenID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screen id")
	}
	var showID uint64
	if raw := c.QueryParam("show_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return badRequest(c, "invalid show_id")
		}
		showID = n
	}
	seats, err := h.Seating.SeatMap(c.Request().Context(), screenID, showID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"screen_id": screenID, "show_id": showID, "seats": seats})
}

// Shows lists the upcoming and running shows of a screen.
func (h *PublicHandler) Shows(c echo.Context) error {
	screenID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screen id")
	}
	shows, err := h.Catalog.Shows(c.Request().Context(), screenID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	items := make([]showView, 0, len(shows))
	for _, s := range shows {
		items = append(items, toShowView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Promos lists the promo codes valid right now.
func (h *PublicHandler) Promos(c echo.Context) error {
	promos, err := h.Catalog.ActivePromos(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	items := make([]promoView, 0, len(promos))
	for _, p := range promos {
		items = append(items, toPromoView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
