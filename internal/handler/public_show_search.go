package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/repository"
)

// SearchShows pages through shows.
// time: "upcoming" (default), "active" (not ended yet), "any" (no time filter)
func (h *PublicHandler) SearchShows(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))

	q := repository.ShowSearchQuery{
		Title:      c.QueryParam("title"),
		Screen:     c.QueryParam("screen"),
		TimeFilter: strings.ToLower(strings.TrimSpace(c.QueryParam("time"))),
		Page:       page,
		PageSize:   ps,
	}
	shows, total, err := h.Catalog.SearchShows(c.Request().Context(), q)
	if err != nil {
		return fail(c, h.Log, err)
	}
	items := make([]showView, 0, len(shows))
	for _, s := range shows {
		items = append(items, toShowView(s))
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"total": total,
		"page":  page,
	})
}
