package handlers

import (
	"net/http"

	"slotshare/internal/common"
	"slotshare/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers exposes the operator-only tenant administration endpoints.
// They sit behind the admin guard, not behind resident sessions.
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}

	tenant, err := h.tenantService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

type RotateTenantCodeRequest struct {
	OldCode string `json:"old_code" validate:"required"`
	NewCode string `json:"new_code" validate:"required"`
}

// RotateTenantCode renames a tenant code and every dependent row atomically.
func (h *TenantHandlers) RotateTenantCode(c echo.Context) error {
	var req RotateTenantCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}
	if req.OldCode == "" || req.NewCode == "" {
		return common.SendValidationError(c, "old_code", "old_code and new_code are required")
	}

	if err := h.tenantService.RotateCode(c.Request().Context(), req.OldCode, req.NewCode); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "rotated",
		"new_code": req.NewCode,
	})
}
