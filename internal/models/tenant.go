package models

import (
	"time"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is a community. Its code is the external identifier every other
// row is scoped by; it can be rotated but the tenant is never deleted.
type Tenant struct {
	Code        string    `json:"code" db:"code"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
