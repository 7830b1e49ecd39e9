package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/service"
)

// CallerFrom builds the service caller from the identity stored by
// JWTAuth.  An unauthenticated request yields the zero Caller.
func CallerFrom(c echo.Context) service.Caller {
	uid, _ := c.Get(CtxUserID).(uint64)
	role, _ := c.Get(CtxRole).(string)
	return service.Caller{AccountID: uid, Role: role}
}

// userKey identifies the requester for rate limiting.  It returns "guest"
// when no user is authenticated.
func userKey(c echo.Context) string {
	if uid, ok := c.Get(CtxUserID).(uint64); ok && uid != 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "guest"
}
