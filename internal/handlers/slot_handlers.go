package handlers

import (
	"net/http"

	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Caller-settable slot fields end here; everything else is derived
// server-side and its presence in a payload is a validation failure.
var slotForbiddenFields = []string{"id", "tenant_code", "owner_id", "created_at", "updated_at"}

type SlotHandlers struct {
	slotService    services.SlotService
	storageService services.StorageService
}

func NewSlotHandlers(slotService services.SlotService, storageService services.StorageService) *SlotHandlers {
	return &SlotHandlers{slotService: slotService, storageService: storageService}
}

// ListSlotsRequest carries the listing query parameters. The tenant filter
// is never part of it; it comes from the session.
type ListSlotsRequest struct {
	Page           int      `query:"page"`
	Limit          int      `query:"limit"`
	LifecycleState string   `query:"lifecycle_state"`
	Category       *string  `query:"category"`
	MinPrice       *float64 `query:"min_price"`
	MaxPrice       *float64 `query:"max_price"`
	Sort           string   `query:"sort"`
}

func (h *SlotHandlers) ListSlots(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req ListSlotsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid query parameters", nil))
	}
	page := common.NormalizePagination(req.Page, req.Limit)

	filter := &models.SlotFilter{
		LifecycleState: req.LifecycleState,
		Category:       req.Category,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		SortByPrice:    req.Sort == "price",
	}

	slots, err := h.slotService.List(c.Request().Context(), session.TenantCode, filter, page)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if slots == nil {
		slots = []*models.Slot{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"slots": slots,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

func (h *SlotHandlers) GetSlot(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid slot ID", nil))
	}

	slot, err := h.slotService.GetByID(c.Request().Context(), session.TenantCode, slotID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *SlotHandlers) CreateSlot(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if _, err := common.ReadBodyGuarded(c, slotForbiddenFields...); err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	var req services.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}

	slot, err := h.slotService.Create(c.Request().Context(), session, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *SlotHandlers) UpdateSlot(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid slot ID", nil))
	}

	fields, err := common.ReadBodyGuarded(c, slotForbiddenFields...)
	if err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}
	if len(fields) == 0 {
		return common.SendDomainError(c, common.ErrEmptyUpdate)
	}

	var req services.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}

	slot, err := h.slotService.Update(c.Request().Context(), session, slotID, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *SlotHandlers) RetireSlot(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid slot ID", nil))
	}

	if err := h.slotService.Retire(c.Request().Context(), session, slotID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "retired"})
}

// UploadSlotPhoto accepts a multipart "photo" file for a slot the caller owns.
func (h *SlotHandlers) UploadSlotPhoto(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid slot ID", nil))
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return common.SendValidationError(c, "photo", "photo file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendDomainError(c, err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	photo, err := h.storageService.UploadSlotPhoto(c.Request().Context(), session, slotID, file, fileHeader.Size, contentType)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, photo)
}

func (h *SlotHandlers) ListSlotPhotos(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid slot ID", nil))
	}

	photos, err := h.storageService.ListSlotPhotos(c.Request().Context(), session, slotID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if photos == nil {
		photos = []*models.SlotPhoto{}
	}
	return c.JSON(http.StatusOK, map[string]any{"photos": photos})
}
