package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/api/middleware"
	"github.com/baketrak/order-system/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: both claims must be
// non-empty (presence proves the middleware ran on this route).
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if userID == "" || role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Identity{UserID: userID, Role: role}, nil
}
