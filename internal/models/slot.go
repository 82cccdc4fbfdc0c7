package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotStateActive           = "active"
	SlotStateUnderMaintenance = "under_maintenance"
	SlotStateDisabled         = "disabled"
)

// Slot is a bookable parking slot owned by one user within one tenant.
// Label is unique per (tenant_code, label), never globally.
// A nil PricePerHour means "contact owner": the slot cannot be instantly booked.
type Slot struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantCode     string     `json:"tenant_code" db:"tenant_code"`
	OwnerID        uuid.UUID  `json:"owner_id" db:"owner_id"`
	Label          string     `json:"label" db:"label"`
	Category       string     `json:"category" db:"category"`
	PricePerHour   *float64   `json:"price_per_hour" db:"price_per_hour"`
	AutoConfirm    bool       `json:"auto_confirm" db:"auto_confirm"`
	LifecycleState string     `json:"lifecycle_state" db:"lifecycle_state"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// SlotFilter holds filter criteria for slot listings.
type SlotFilter struct {
	LifecycleState string   `json:"lifecycle_state,omitempty"`
	Category       *string  `json:"category,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	SortByPrice    bool     `json:"sort_by_price,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}
