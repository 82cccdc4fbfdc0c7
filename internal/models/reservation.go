package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
	ReservationStatusNoShow    = "no_show"
)

// Reservation is a time-bounded claim on one slot by one renter.
// [StartTime, EndTime) is half-open; for a given slot the reservations in
// {pending, confirmed} must have pairwise disjoint intervals.
// SlotOwnerID is denormalized at creation so cancel authorization does not
// need a join. Rows are never hard-deleted.
type Reservation struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantCode  string    `json:"tenant_code" db:"tenant_code"`
	SlotID      uuid.UUID `json:"slot_id" db:"slot_id"`
	RenterID    uuid.UUID `json:"renter_id" db:"renter_id"`
	SlotOwnerID uuid.UUID `json:"slot_owner_id" db:"slot_owner_id"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	TotalPrice  float64   `json:"total_price" db:"total_price"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether no further transitions are allowed.
func (r *Reservation) IsTerminal() bool {
	switch r.Status {
	case ReservationStatusCancelled, ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}
	return false
}

// ReservationFilter holds filter criteria for reservation listings.
// Role selects whether the caller appears as renter, slot owner, or either.
type ReservationFilter struct {
	Role      string     `json:"role,omitempty"` // "renter", "owner" or "" for both
	Status    *string    `json:"status,omitempty"`
	StartFrom *time.Time `json:"start_from,omitempty"`
	StartTo   *time.Time `json:"start_to,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
