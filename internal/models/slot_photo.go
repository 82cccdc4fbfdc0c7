package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotPhoto references an image object stored in MinIO for a slot.
type SlotPhoto struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantCode string    `json:"tenant_code" db:"tenant_code"`
	SlotID     uuid.UUID `json:"slot_id" db:"slot_id"`
	ObjectKey  string    `json:"object_key" db:"object_key"`
	URL        string    `json:"url,omitempty" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
