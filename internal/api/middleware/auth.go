package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/api/metrics"
	"github.com/baketrak/order-system/internal/infrastructure/token"
)

// Context keys set by Auth for downstream handlers and guards.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Auth validates the bearer token and attaches the identity to the context.
// A missing or malformed header is 401; a token that is present but invalid
// or expired is 403. Verification is stateless and never touches the store.
func Auth(verifier *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			identity, err := verifier.Verify(parts[1])
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
			}

			c.Set(CtxUserID, identity.UserID)
			c.Set(CtxRole, identity.Role)

			return next(c)
		}
	}
}
