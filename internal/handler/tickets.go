package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/service"
)

// TicketHandler lists, shows and cancels the caller's tickets.
type TicketHandler struct {
	Tickets      *service.Tickets
	Cancellation *service.Cancellation
	Cache        seatMapInvalidator
	Log          *zap.Logger
}

func NewTicketHandler(t *service.Tickets, cancel *service.Cancellation, cache seatMapInvalidator, log *zap.Logger) *TicketHandler {
	return &TicketHandler{Tickets: t, Cancellation: cancel, Cache: cache, Log: log}
}

// List returns the caller's tickets, newest first.
func (h *TicketHandler) List(c echo.Context) error {
	items, err := h.Tickets.List(c.Request().Context(), middleware.CallerFrom(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one ticket owned by the caller.
func (h *TicketHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	t, err := h.Tickets.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Cancel refunds the ticket and frees its seats.
func (h *TicketHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	ctx := c.Request().Context()
	caller := middleware.CallerFrom(c)
	t, err := h.Tickets.Get(ctx, caller, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Cancellation.Cancel(ctx, caller, id); err != nil {
		return fail(c, h.Log, err)
	}
	h.Cache.Invalidate(ctx, t.ScreenID)
	return c.NoContent(http.StatusNoContent)
}
