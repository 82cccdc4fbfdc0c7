package handlers

import (
	"errors"
	"log"
	"net/http"

	"slotshare/internal/common"
	"slotshare/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers exposes registration and login.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register creates a resident account. Every failure below the bind —
// throttled, duplicate email, unknown tenant — collapses into the same
// generic response so the endpoint cannot be used to probe which emails or
// tenant codes exist.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}

	user, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		log.Printf("registration refused for %q: %v", req.Email, err)
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("REGISTRATION_FAILED", "Registration could not be completed", nil))
	}

	return c.JSON(http.StatusCreated, user)
}

// Login authenticates and returns a session token. A rate-limited attempt
// and a wrong password produce byte-identical responses.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}

	token, user, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthorized) || errors.Is(err, common.ErrRateLimited) {
			if errors.Is(err, common.ErrRateLimited) {
				log.Printf("login throttled for %q", req.Email)
			}
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("INVALID_CREDENTIALS", "Invalid email or password", nil))
		}
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
	})
}
