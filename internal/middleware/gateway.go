package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// GatewayAuth guards the payment gateway callback.  The gateway may
// present either an access token of a PAYMENT_GATEWAY account or, when
// user and pass are configured, HTTP Basic credentials.
func GatewayAuth(secret, user, pass string) echo.MiddlewareFunc {
	var basic echo.MiddlewareFunc
	if user != "" && pass != "" {
		basic = echomw.BasicAuth(func(u, p string, c echo.Context) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1 &&
				subtle.ConstantTimeCompare([]byte(p), []byte(pass)) == 1 {
				c.Set(CtxRole, model.RolePaymentGateway)
				return true, nil
			}
			return false, nil
		})
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		var viaBasic echo.HandlerFunc
		if basic != nil {
			viaBasic = basic(next)
		}
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				id, err := utils.ParseAccessToken(secret, raw)
				if err != nil || id.Role != model.RolePaymentGateway {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid gateway token"})
				}
				c.Set(CtxUserID, id.UserID)
				c.Set(CtxRole, id.Role)
				return next(c)
			}
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if viaBasic != nil && strings.HasPrefix(strings.ToLower(auth), "basic ") {
				return viaBasic(c)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "gateway credentials required"})
		}
	}
}
