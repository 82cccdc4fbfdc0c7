package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a resident of exactly one tenant. TenantCode is immutable after
// registration (only tenant code rotation rewrites it, for all rows at once).
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantCode     string    `json:"tenant_code" db:"tenant_code"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	UnitIdentifier string    `json:"unit_identifier" db:"unit_identifier"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
