package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard protects operator-only endpoints (tenant code rotation) with a
// shared token. Comparison is constant-time.
func AdminGuard(adminToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminToken == "" {
				return echo.NewHTTPError(http.StatusNotFound, "Not found")
			}
			supplied := c.Request().Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(adminToken)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			return next(c)
		}
	}
}
