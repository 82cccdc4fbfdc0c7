package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Domain failure taxonomy. Services return these (possibly wrapped);
// handlers map them to HTTP exactly once, at the boundary.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrNoTenantAssigned      = errors.New("no tenant assigned")
	ErrNotFound              = errors.New("not found")
	ErrNotOwner              = errors.New("not owner")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrDuplicateLabel        = errors.New("duplicate label")
	ErrOverlapConflict       = errors.New("reservation window overlaps an existing reservation")
	ErrResourceUnavailable   = errors.New("slot is not available for booking")
	ErrNoInstantBooking      = errors.New("slot has no hourly price, contact the owner")
	ErrInvalidWindow         = errors.New("invalid reservation window")
	ErrEmptyUpdate           = errors.New("update contains no mutable fields")
	ErrAlreadyTerminal       = errors.New("reservation is already in a terminal state")
	ErrHasActiveReservations = errors.New("slot has active reservations")
	ErrRateLimited           = errors.New("rate limited")
	ErrTimeout               = errors.New("operation timed out")
	ErrCodeCollision         = errors.New("tenant code already in use")
	ErrValidation            = errors.New("validation failed")
)

// Validation tags a message as a client validation failure so the boundary
// renders it as 422 instead of a generic internal error.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ErrorResponse is the machine-readable error envelope returned to clients.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds the standard error envelope.
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a 422 with per-field detail.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{field: message}
	return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendDomainError maps a taxonomy error to its HTTP rendering. Anything not
// in the taxonomy is logged with its full detail and collapsed to a generic
// internal failure so storage errors never leak to the caller.
func SendDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHENTICATED", "Authentication required", nil))
	case errors.Is(err, ErrNoTenantAssigned):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("NO_TENANT", "No tenant assigned to this session", nil))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", "Not found", nil))
	case errors.Is(err, ErrNotOwner):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("NOT_OWNER", "Only the owner may modify this slot", nil))
	case errors.Is(err, ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("NOT_AUTHORIZED", "Not authorized for this reservation", nil))
	case errors.Is(err, ErrDuplicateLabel):
		return c.JSON(http.StatusConflict, CreateErrorResponse("DUPLICATE_LABEL", "A slot with this label already exists", nil))
	case errors.Is(err, ErrOverlapConflict):
		return c.JSON(http.StatusConflict, CreateErrorResponse("OVERLAP_CONFLICT", "Requested window overlaps an existing reservation", nil))
	case errors.Is(err, ErrResourceUnavailable):
		return c.JSON(http.StatusConflict, CreateErrorResponse("SLOT_UNAVAILABLE", "Slot is not available for booking", nil))
	case errors.Is(err, ErrNoInstantBooking):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("NO_INSTANT_BOOKING", "Slot has no hourly price; contact the owner", nil))
	case errors.Is(err, ErrInvalidWindow):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("INVALID_WINDOW", "Reservation window is invalid", nil))
	case errors.Is(err, ErrEmptyUpdate):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("EMPTY_UPDATE", "Update contains no mutable fields", nil))
	case errors.Is(err, ErrAlreadyTerminal):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("ALREADY_TERMINAL", "Reservation is already in a terminal state", nil))
	case errors.Is(err, ErrHasActiveReservations):
		return c.JSON(http.StatusConflict, CreateErrorResponse("HAS_ACTIVE_RESERVATIONS", "Slot still has pending or confirmed reservations", nil))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("VALIDATION_ERROR", err.Error(), nil))
	case errors.Is(err, ErrCodeCollision):
		return c.JSON(http.StatusConflict, CreateErrorResponse("CODE_COLLISION", "Tenant code already in use", nil))
	case errors.Is(err, ErrTimeout):
		log.Printf("request timed out: %v", err)
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse("TIMEOUT", "Operation timed out, retry later", nil))
	default:
		log.Printf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("INTERNAL", "Internal error", nil))
	}
}
