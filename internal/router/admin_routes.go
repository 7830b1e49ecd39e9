package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/model"
)

// RegisterAdmin registers catalog and seat layout management under
// /v1/admin.  Every route requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/screens", h.CreateScreen)
	g.GET("/screens", h.ListScreens)
	g.POST("/screens/:id/seats", h.GenerateSeats)
	g.DELETE("/screens/:id/seats", h.DeleteSeats)
	g.POST("/screens/:id/seats/release", h.ReleaseSeats)
	g.POST("/seat-types", h.CreateSeatType)
	g.GET("/seat-types", h.ListSeatTypes)
	g.POST("/shows", h.CreateShow)
	g.POST("/promos", h.CreatePromo)
}
