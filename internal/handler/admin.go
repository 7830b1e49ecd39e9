package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

// AdminHandler serves catalog management and seat layout endpoints.
type AdminHandler struct {
	Catalog *service.Catalog
	Seating *service.Seating
	Cache   seatMapInvalidator
	Log     *zap.Logger
}

func NewAdminHandler(cat *service.Catalog, seating *service.Seating, cache seatMapInvalidator, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Catalog: cat, Seating: seating, Cache: cache, Log: log}
}

type screenReq struct {
	Name        string `json:"name"`
	DisplayTech string `json:"display_tech"`
	AudioTech   string `json:"audio_tech"`
}

type screenView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	DisplayTech string    `json:"display_tech,omitempty"`
	AudioTech   string    `json:"audio_tech,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toScreenView(s model.Screen) screenView {
	return screenView{ID: s.ID, Name: s.Name, DisplayTech: s.DisplayTech, AudioTech: s.AudioTech, IsActive: s.IsActive, CreatedAt: s.CreatedAt}
}

// CreateScreen adds a screen.
func (h *AdminHandler) CreateScreen(c echo.Context) error {
	var req screenReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	s := &model.Screen{Name: req.Name, DisplayTech: strings.TrimSpace(req.DisplayTech), AudioTech: strings.TrimSpace(req.AudioTech)}
	if err := h.Catalog.CreateScreen(c.Request().Context(), s); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toScreenView(*s))
}

// ListScreens returns every screen.
func (h *AdminHandler) ListScreens(c echo.Context) error {
	screens, err := h.Catalog.Screens(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	items := make([]screenView, 0, len(screens))
	for _, s := range screens {
		items = append(items, toScreenView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type seatTypeReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type seatTypeView struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// CreateSeatType adds a price tier.
func (h *AdminHandler) CreateSeatType(c echo.Context) error {
	var req seatTypeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	st := &model.SeatType{Name: req.Name, Price: req.Price}
	if err := h.Catalog.CreateSeatType(c.Request().Context(), st); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, seatTypeView{ID: st.ID, Name: st.Name, Price: st.Price.StringFixed(2)})
}

// ListSeatTypes returns every price tier.
func (h *AdminHandler) ListSeatTypes(c echo.Context) error {
	types, err := h.Catalog.SeatTypes(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	items := make([]seatTypeView, 0, len(types))
	for _, st := range types {
		items = append(items, seatTypeView{ID: st.ID, Name: st.Name, Price: st.Price.StringFixed(2)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type showReq struct {
	ScreenID   uint64    `json:"screen_id"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// CreateShow schedules a show.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req showReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body (times are RFC 3339)")
	}
	s := &model.Show{ScreenID: req.ScreenID, MovieTitle: req.MovieTitle, StartsAt: req.StartsAt, EndsAt: req.EndsAt}
	if err := h.Catalog.CreateShow(c.Request().Context(), s); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toShowView(*s))
}

type promoReq struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MinimumPurchase decimal.Decimal `json:"minimum_purchase"`
	AllowedMethod   string          `json:"allowed_method"`
	ValidFrom       time.Time       `json:"valid_from"`
	ValidTo         time.Time       `json:"valid_to"`
}

// CreatePromo adds a promo code.
func (h *AdminHandler) CreatePromo(c echo.Context) error {
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p := &model.Promo{
		Code:            req.Code,
		Description:     strings.TrimSpace(req.Description),
		DiscountPercent: req.DiscountPercent,
		MinimumPurchase: req.MinimumPurchase,
		AllowedMethod:   model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.AllowedMethod))),
		ValidFrom:       req.ValidFrom.UTC(),
		ValidTo:         req.ValidTo.UTC(),
	}
	if err := h.Catalog.CreatePromo(c.Request().Context(), p); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toPromoView(*p))
}

type seatSchemaReq struct {
	RowRange   string `json:"row_range"`
	Columns    int    `json:"columns"`
	SeatTypeID uint64 `json:"seat_type_id"`
}

type generateSeatsReq struct {
	Schemas []seatSchemaReq `json:"schemas"`
}

// GenerateSeats creates a screen's seat layout from row/column schemas.
func (h *AdminHandler) GenerateSeats(c echo.Context) error {
	screenID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screen id")
	}
	var req generateSeatsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	schemas := make([]model.SeatSchema, 0, len(req.Schemas))
	for _, s := range req.Schemas {
		schemas = append(schemas, model.SeatSchema{RowRange: s.RowRange, Columns: s.Columns, SeatTypeID: s.SeatTypeID})
	}
	ctx := c.Request().Context()
	n, err := h.Seating.Generate(ctx, screenID, schemas)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, screenID)
	return c.JSON(http.StatusCreated, echo.Map{"screen_id": screenID, "created": n})
}

// DeleteSeats removes a screen's seat layout.
func (h *AdminHandler) DeleteSeats(c echo.Context) error {
	screenID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screen id")
	}
	ctx := c.Request().Context()
	n, err := h.Seating.Teardown(ctx, screenID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, screenID)
	return c.JSON(http.StatusOK, echo.Map{"screen_id": screenID, "deleted": n})
}

type releaseReq struct {
	Seats []string `json:"seats"`
}

// ReleaseSeats clears holds on the given seats regardless of who holds them.
func (h *AdminHandler) ReleaseSeats(c echo.Context) error {
	screenID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid screen id")
	}
	var req releaseReq
	if err := c.Bind(&req); err != nil || len(req.Seats) == 0 {
		return badRequest(c, "seats required")
	}
	ctx := c.Request().Context()
	if err := h.Seating.ReleaseSeats(ctx, screenID, req.Seats); err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, screenID)
	return c.NoContent(http.StatusNoContent)
}
