package services

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"slotshare/internal/caching"
	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/repositories"

	"github.com/google/uuid"
)

const slotCacheTTL = 5 * time.Minute

// SlotService owns the slot lifecycle. Tenant scope and ownership always
// come from the session; payload values for either are rejected upstream.
type SlotService interface {
	List(ctx context.Context, tenantCode string, filter *models.SlotFilter, page common.Pagination) ([]*models.Slot, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Slot, error)
	Create(ctx context.Context, session common.Session, req *CreateSlotRequest) (*models.Slot, error)
	Update(ctx context.Context, session common.Session, id uuid.UUID, req *UpdateSlotRequest) (*models.Slot, error)
	Retire(ctx context.Context, session common.Session, id uuid.UUID) error
}

type slotService struct {
	slotRepo        repositories.SlotRepository
	reservationRepo repositories.ReservationRepository
	cache           caching.CacheService
}

func NewSlotService(slotRepo repositories.SlotRepository, reservationRepo repositories.ReservationRepository, cache caching.CacheService) SlotService {
	return &slotService{
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
		cache:           cache,
	}
}

type CreateSlotRequest struct {
	Label        string   `json:"label" validate:"required"`
	Category     string   `json:"category"`
	PricePerHour *float64 `json:"price_per_hour"`
	AutoConfirm  bool     `json:"auto_confirm"`
}

type UpdateSlotRequest struct {
	Label          *string  `json:"label"`
	Category       *string  `json:"category"`
	PricePerHour   *float64 `json:"price_per_hour"`
	ClearPrice     bool     `json:"clear_price"`
	AutoConfirm    *bool    `json:"auto_confirm"`
	LifecycleState *string  `json:"lifecycle_state"`
}

// validatePrice bounds prices to positive values with at most two decimal
// places (currency minor units).
func validatePrice(price float64) error {
	if price <= 0 {
		return common.Validation("price_per_hour must be positive")
	}
	if price > 10000 {
		return common.Validation("price_per_hour cannot exceed 10,000")
	}
	cents := price * 100
	if math.Abs(cents-math.Round(cents)) > 1e-9 {
		return common.Validation("price_per_hour cannot have more than 2 decimal places")
	}
	return nil
}

func validateLifecycleState(state string) error {
	switch state {
	case models.SlotStateActive, models.SlotStateUnderMaintenance, models.SlotStateDisabled:
		return nil
	}
	return common.Validation("invalid lifecycle_state %q", state)
}

func (s *slotService) List(ctx context.Context, tenantCode string, filter *models.SlotFilter, page common.Pagination) ([]*models.Slot, error) {
	if filter == nil {
		filter = &models.SlotFilter{}
	}
	if filter.LifecycleState == "" {
		filter.LifecycleState = models.SlotStateActive
	} else if err := validateLifecycleState(filter.LifecycleState); err != nil {
		return nil, err
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()
	return s.slotRepo.List(ctx, tenantCode, filter)
}

func (s *slotService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Slot, error) {
	if cached, err := s.cache.GetSlot(ctx, tenantCode, id); err == nil && cached != nil {
		return cached, nil
	}
	slot, err := s.slotRepo.GetByID(ctx, tenantCode, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSlot(ctx, slot, slotCacheTTL); err != nil {
		log.Printf("slot cache set failed: %v", err)
	}
	return slot, nil
}

func (s *slotService) Create(ctx context.Context, session common.Session, req *CreateSlotRequest) (*models.Slot, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, common.Validation("label is required")
	}
	if req.PricePerHour != nil {
		if err := validatePrice(*req.PricePerHour); err != nil {
			return nil, err
		}
	}

	slot := &models.Slot{
		ID:             uuid.New(),
		TenantCode:     session.TenantCode,
		OwnerID:        session.UserID,
		Label:          label,
		Category:       strings.TrimSpace(req.Category),
		PricePerHour:   req.PricePerHour,
		AutoConfirm:    req.AutoConfirm,
		LifecycleState: models.SlotStateActive,
	}
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Update applies a partial update after the tenant-scoped load and owner
// check. A slot in another tenant is indistinguishable from a missing one.
func (s *slotService) Update(ctx context.Context, session common.Session, id uuid.UUID, req *UpdateSlotRequest) (*models.Slot, error) {
	if req.Label == nil && req.Category == nil && req.PricePerHour == nil && !req.ClearPrice && req.AutoConfirm == nil && req.LifecycleState == nil {
		return nil, common.ErrEmptyUpdate
	}

	slot, err := s.slotRepo.GetByID(ctx, session.TenantCode, id)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != session.UserID {
		return nil, common.ErrNotOwner
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, common.Validation("label cannot be empty")
		}
		slot.Label = label
	}
	if req.Category != nil {
		slot.Category = strings.TrimSpace(*req.Category)
	}
	if req.PricePerHour != nil {
		if err := validatePrice(*req.PricePerHour); err != nil {
			return nil, err
		}
		slot.PricePerHour = req.PricePerHour
	} else if req.ClearPrice {
		slot.PricePerHour = nil
	}
	if req.AutoConfirm != nil {
		slot.AutoConfirm = *req.AutoConfirm
	}
	if req.LifecycleState != nil {
		if err := validateLifecycleState(*req.LifecycleState); err != nil {
			return nil, err
		}
		// A slot with pending or confirmed reservations cannot be disabled,
		// through this path any more than through Retire.
		if *req.LifecycleState == models.SlotStateDisabled && slot.LifecycleState != models.SlotStateDisabled {
			active, err := s.reservationRepo.CountActiveBySlot(ctx, session.TenantCode, id)
			if err != nil {
				return nil, err
			}
			if active > 0 {
				return nil, common.ErrHasActiveReservations
			}
		}
		slot.LifecycleState = *req.LifecycleState
	}

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		return nil, err
	}
	if err := s.cache.DeleteSlot(ctx, session.TenantCode, id); err != nil {
		log.Printf("slot cache invalidation failed: %v", err)
	}
	return slot, nil
}

// Retire soft-disables a slot. It refuses while any pending or confirmed
// reservation still references the slot; the audit trail keeps the row.
func (s *slotService) Retire(ctx context.Context, session common.Session, id uuid.UUID) error {
	slot, err := s.slotRepo.GetByID(ctx, session.TenantCode, id)
	if err != nil {
		return err
	}
	if slot.OwnerID != session.UserID {
		return common.ErrNotOwner
	}

	active, err := s.reservationRepo.CountActiveBySlot(ctx, session.TenantCode, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return common.ErrHasActiveReservations
	}

	slot.LifecycleState = models.SlotStateDisabled
	if err := s.slotRepo.Update(ctx, slot); err != nil {
		return err
	}
	if err := s.cache.DeleteSlot(ctx, session.TenantCode, id); err != nil {
		log.Printf("slot cache invalidation failed: %v", err)
	}
	return nil
}
