package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Session-less
// operations live under /v1/auth; /v1/me requires an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	// Logout accepts either a refresh token in the body or a bearer token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The seat
// map goes through the Redis response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache *middleware.SeatMapCache) {
	e.GET("/v1/screens/:id/seats", p.SeatMap, cache.Middleware())
	e.GET("/v1/screens/:id/shows", p.Shows)
	e.GET("/v1/promos", p.Promos)
	e.GET("/v1/search/shows", p.SearchShows)
}
