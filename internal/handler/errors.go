package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/service"
)

// statusOf maps a service error kind to its HTTP status.
func statusOf(err error) int {
	switch service.KindOf(err) {
	case service.ErrValidation:
		return http.StatusBadRequest
	case service.ErrSeatUnavailable, service.ErrPolicyViolation:
		return http.StatusConflict
	case service.ErrTokenInvalid:
		return http.StatusUnauthorized
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body.  Storage failures are logged and
// reported without internal detail.
func fail(c echo.Context, log *zap.Logger, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	body := echo.Map{"error": err.Error()}
	var seatErr *service.SeatUnavailableError
	if errors.As(err, &seatErr) {
		body["seats"] = seatErr.Codes
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
