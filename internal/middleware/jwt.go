package middleware

import (
	"context"
	"net/http"

	"slotshare/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionClaims is the JWT payload issued at login: subject is the user ID,
// tenant_code is the community the session is scoped to. The claim is the
// sole source of tenant scope; tenant identifiers in request payloads are
// never used as filters.
type SessionClaims struct {
	TenantCode string `json:"tenant_code"`
	jwt.RegisteredClaims
}

// SessionConfig builds the echo-jwt configuration that validates the token
// and copies (user_id, tenant_code) into the request context. A bad subject
// leaves the context unset, which downstream resolves to Unauthenticated.
func SessionConfig(jwtSecret []byte) echojwt.Config {
	return echojwt.Config{
		SigningKey: jwtSecret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(SessionClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*SessionClaims)
			if !ok {
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.TenantCodeKey, claims.TenantCode)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
