package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Reservation payloads may only name the slot and the window. The renter,
// the owner, the tenant and above all the price are derived server-side.
var reservationForbiddenFields = []string{"id", "tenant_code", "renter_id", "slot_owner_id", "total_price", "created_at", "updated_at"}

type ReservationHandlers struct {
	reservationService services.ReservationService
}

func NewReservationHandlers(reservationService services.ReservationService) *ReservationHandlers {
	return &ReservationHandlers{reservationService: reservationService}
}

type ListReservationsRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Role   string `query:"role"`
	Status string `query:"status"`
	From   string `query:"from"`
	To     string `query:"to"`
}

func (h *ReservationHandlers) ListReservations(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req ListReservationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid query parameters", nil))
	}
	page := common.NormalizePagination(req.Page, req.Limit)

	filter := &models.ReservationFilter{Role: req.Role}
	if req.Status != "" {
		filter.Status = &req.Status
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return common.SendValidationError(c, "from", "must be an RFC3339 timestamp")
		}
		filter.StartFrom = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return common.SendValidationError(c, "to", "must be an RFC3339 timestamp")
		}
		filter.StartTo = &to
	}

	reservations, err := h.reservationService.List(c.Request().Context(), session, filter, page)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if reservations == nil {
		reservations = []*models.Reservation{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"reservations": reservations,
		"page":         page.Page,
		"limit":        page.Limit,
	})
}

func (h *ReservationHandlers) CreateReservation(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if _, err := common.ReadBodyGuarded(c, reservationForbiddenFields...); err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	var req services.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid request format", nil))
	}
	if req.SlotID == uuid.Nil {
		return common.SendValidationError(c, "slot_id", "slot_id is required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return common.SendValidationError(c, "start_time", "start_time and end_time are required RFC3339 timestamps")
	}

	reservation, err := h.reservationService.Create(c.Request().Context(), session, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, reservation)
}

// CancelReservation is the only caller-reachable state transition. A body is
// optional; if present, its status may only request "cancelled".
func (h *ReservationHandlers) CancelReservation(c echo.Context) error {
	session, err := common.ResolveSession(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("BAD_REQUEST", "Invalid reservation ID", nil))
	}

	fields, err := common.ReadBodyGuarded(c, reservationForbiddenFields...)
	if err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}
	if raw, present := fields["status"]; present {
		var status string
		if err := json.Unmarshal(raw, &status); err != nil || status != models.ReservationStatusCancelled {
			return common.SendValidationError(c, "status", "only the cancelled status may be requested")
		}
	}

	reservation, err := h.reservationService.Cancel(c.Request().Context(), session, reservationID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, reservation)
}
