package services

import (
	"context"
	"errors"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/repositories"

	"github.com/google/uuid"
)

// bookTimeout bounds how long a booking may hold the slot lock.
const bookTimeout = 5 * time.Second

// ReservationService is the booking core. The overlap guarantee lives in the
// repository transaction; this layer validates the window, scopes everything
// to the session tenant, and authorizes cancellation.
type ReservationService interface {
	List(ctx context.Context, session common.Session, filter *models.ReservationFilter, page common.Pagination) ([]*models.Reservation, error)
	Create(ctx context.Context, session common.Session, req *CreateReservationRequest) (*models.Reservation, error)
	Cancel(ctx context.Context, session common.Session, id uuid.UUID) (*models.Reservation, error)
}

type reservationService struct {
	reservationRepo repositories.ReservationRepository
	now             func() time.Time
}

func NewReservationService(reservationRepo repositories.ReservationRepository) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		now:             time.Now,
	}
}

type CreateReservationRequest struct {
	SlotID    uuid.UUID `json:"slot_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

func (s *reservationService) List(ctx context.Context, session common.Session, filter *models.ReservationFilter, page common.Pagination) ([]*models.Reservation, error) {
	if filter == nil {
		filter = &models.ReservationFilter{}
	}
	switch filter.Role {
	case "", "renter", "owner":
	default:
		return nil, common.Validation("role must be renter or owner")
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.ReservationStatusPending, models.ReservationStatusConfirmed,
			models.ReservationStatusCancelled, models.ReservationStatusCompleted,
			models.ReservationStatusNoShow:
		default:
			return nil, common.Validation("invalid status filter")
		}
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()
	return s.reservationRepo.List(ctx, session.TenantCode, session.UserID, filter)
}

// Create books a slot. Window checks run here; slot existence, lifecycle,
// quote-only and overlap checks run inside the booking transaction so they
// see the row under the lock. The transaction gets a bounded deadline; a
// deadline hit surfaces as the retryable Timeout failure, never as a
// business-rule error.
func (s *reservationService) Create(ctx context.Context, session common.Session, req *CreateReservationRequest) (*models.Reservation, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, common.ErrInvalidWindow
	}
	if !req.StartTime.After(s.now()) {
		return nil, common.ErrInvalidWindow
	}

	bookCtx, cancel := context.WithTimeout(ctx, bookTimeout)
	defer cancel()

	reservation, err := s.reservationRepo.Book(bookCtx, repositories.BookParams{
		TenantCode: session.TenantCode,
		SlotID:     req.SlotID,
		RenterID:   session.UserID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.ErrTimeout
		}
		return nil, err
	}
	return reservation, nil
}

// Cancel transitions a reservation to cancelled. Allowed for the renter and
// the slot owner only; terminal reservations stay untouched. The conditional
// update makes a cancel racing another terminal transition lose cleanly.
func (s *reservationService) Cancel(ctx context.Context, session common.Session, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, session.TenantCode, id)
	if err != nil {
		return nil, err
	}

	if session.UserID != reservation.RenterID && session.UserID != reservation.SlotOwnerID {
		return nil, common.ErrNotAuthorized
	}
	if reservation.IsTerminal() {
		return nil, common.ErrAlreadyTerminal
	}

	cancelled, err := s.reservationRepo.CancelNonTerminal(ctx, session.TenantCode, id)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		// lost a race against the sweeper or another cancel
		return nil, common.ErrAlreadyTerminal
	}

	reservation.Status = models.ReservationStatusCancelled
	return reservation, nil
}
