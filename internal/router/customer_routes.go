package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/model"
)

// RegisterCustomer registers the payer's endpoints under /v1.  All routes
// require a valid access token; checkout and ticket reads are limited to
// USER accounts, cancellation is also open to ADMIN.  The token bucket
// limiter guards every route of the group.
func RegisterCustomer(e *echo.Echo, co *handler.CheckoutHandler, t *handler.TicketHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	user := middleware.RequireRole(model.RoleUser)
	g.POST("/checkout", co.Start, user)
	g.GET("/tickets", t.List, user)
	g.GET("/tickets/:id", t.Get, user)
	g.DELETE("/tickets/:id", t.Cancel, middleware.RequireRole(model.RoleUser, model.RoleAdmin))
}

// RegisterGateway registers the payment gateway callback.  The gateway
// authenticates with a PAYMENT_GATEWAY access token or Basic credentials.
func RegisterGateway(e *echo.Echo, co *handler.CheckoutHandler, gatewayAuth echo.MiddlewareFunc) {
	e.POST("/v1/tickets/generate", co.Generate, gatewayAuth, middleware.RequireRole(model.RolePaymentGateway))
}
