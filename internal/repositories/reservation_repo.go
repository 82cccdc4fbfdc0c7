package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookParams carries the caller-independent inputs of a booking. The price
// is deliberately absent: it is read from the slot row inside the booking
// transaction and never accepted from outside.
type BookParams struct {
	TenantCode string
	SlotID     uuid.UUID
	RenterID   uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
}

type ReservationRepository interface {
	Book(ctx context.Context, params BookParams) (*models.Reservation, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Reservation, error)
	CancelNonTerminal(ctx context.Context, tenantCode string, id uuid.UUID) (bool, error)
	List(ctx context.Context, tenantCode string, callerID uuid.UUID, filter *models.ReservationFilter) ([]*models.Reservation, error)
	CountActiveBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (int, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	MarkNoShows(ctx context.Context, now time.Time) (int64, error)
}

type reservationRepo struct {
	db Database
}

func NewReservationRepo(db Database) ReservationRepository {
	return &reservationRepo{db: db}
}

// Book serializes on the slot row: SELECT ... FOR UPDATE blocks concurrent
// bookings of the same slot, so the overlap scan and the insert behave as
// one atomic step. Two concurrent requests with intersecting windows get
// exactly one success and one ErrOverlapConflict; bookings of different
// slots never contend.
func (r *reservationRepo) Book(ctx context.Context, params BookParams) (*models.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		ownerID      uuid.UUID
		pricePerHour *float64
		state        string
		autoConfirm  bool
	)
	err = tx.QueryRow(ctx, `
		SELECT owner_id, price_per_hour, lifecycle_state, auto_confirm
		FROM slots
		WHERE tenant_code = $1 AND id = $2
		FOR UPDATE
	`, params.TenantCode, params.SlotID).Scan(&ownerID, &pricePerHour, &state, &autoConfirm)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	if state != models.SlotStateActive {
		return nil, common.ErrResourceUnavailable
	}
	if pricePerHour == nil {
		return nil, common.ErrNoInstantBooking
	}

	// half-open intervals intersect iff start < other.end AND end > other.start
	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE slot_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_time < $3
			  AND end_time > $2
		)
	`, params.SlotID, params.StartTime, params.EndTime).Scan(&overlaps)
	if err != nil {
		return nil, fmt.Errorf("overlap scan: %w", err)
	}
	if overlaps {
		return nil, common.ErrOverlapConflict
	}

	hours := params.EndTime.Sub(params.StartTime).Hours()
	totalPrice := math.Round(*pricePerHour*hours*100) / 100

	status := models.ReservationStatusPending
	if autoConfirm {
		status = models.ReservationStatusConfirmed
	}

	reservation := &models.Reservation{
		ID:          uuid.New(),
		TenantCode:  params.TenantCode,
		SlotID:      params.SlotID,
		RenterID:    params.RenterID,
		SlotOwnerID: ownerID,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		TotalPrice:  totalPrice,
		Status:      status,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO reservations (id, tenant_code, slot_id, renter_id, slot_owner_id, start_time, end_time, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`, reservation.ID, reservation.TenantCode, reservation.SlotID, reservation.RenterID, reservation.SlotOwnerID,
		reservation.StartTime, reservation.EndTime, reservation.TotalPrice, reservation.Status,
	).Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *reservationRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Reservation, error) {
	reservation := &models.Reservation{}
	query := `
		SELECT id, tenant_code, slot_id, renter_id, slot_owner_id, start_time, end_time, total_price, status, created_at, updated_at
		FROM reservations
		WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(
		&reservation.ID, &reservation.TenantCode, &reservation.SlotID, &reservation.RenterID, &reservation.SlotOwnerID,
		&reservation.StartTime, &reservation.EndTime, &reservation.TotalPrice, &reservation.Status,
		&reservation.CreatedAt, &reservation.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// CancelNonTerminal flips a pending or confirmed reservation to cancelled.
// The status predicate makes the transition race-safe: a cancel that loses
// against a concurrent terminal transition affects zero rows.
func (r *reservationRepo) CancelNonTerminal(ctx context.Context, tenantCode string, id uuid.UUID) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled', updated_at = NOW()
		WHERE tenant_code = $1 AND id = $2 AND status IN ('pending', 'confirmed')
	`
	tag, err := r.db.Exec(ctx, query, tenantCode, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *reservationRepo) List(ctx context.Context, tenantCode string, callerID uuid.UUID, filter *models.ReservationFilter) ([]*models.Reservation, error) {
	query := `
		SELECT id, tenant_code, slot_id, renter_id, slot_owner_id, start_time, end_time, total_price, status, created_at, updated_at
		FROM reservations
		WHERE tenant_code = $1
	`
	args := []any{tenantCode}
	argPos := 2

	switch filter.Role {
	case "renter":
		query += fmt.Sprintf(" AND renter_id = $%d", argPos)
		args = append(args, callerID)
		argPos++
	case "owner":
		query += fmt.Sprintf(" AND slot_owner_id = $%d", argPos)
		args = append(args, callerID)
		argPos++
	default:
		query += fmt.Sprintf(" AND (renter_id = $%d OR slot_owner_id = $%d)", argPos, argPos)
		args = append(args, callerID)
		argPos++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.StartFrom != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argPos)
		args = append(args, *filter.StartFrom)
		argPos++
	}
	if filter.StartTo != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argPos)
		args = append(args, *filter.StartTo)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY start_time ASC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		reservation := &models.Reservation{}
		if err := rows.Scan(
			&reservation.ID, &reservation.TenantCode, &reservation.SlotID, &reservation.RenterID, &reservation.SlotOwnerID,
			&reservation.StartTime, &reservation.EndTime, &reservation.TotalPrice, &reservation.Status,
			&reservation.CreatedAt, &reservation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

func (r *reservationRepo) CountActiveBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE tenant_code = $1 AND slot_id = $2 AND status IN ('pending', 'confirmed')
	`
	err := r.db.QueryRow(ctx, query, tenantCode, slotID).Scan(&count)
	return count, err
}

// CompleteElapsed moves confirmed reservations whose window has passed to
// completed. Run from the background sweeper, not from any request path.
func (r *reservationRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed' AND end_time <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkNoShows moves pending reservations whose window has fully passed to
// no_show: the owner never confirmed and the window is gone.
func (r *reservationRepo) MarkNoShows(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = 'no_show', updated_at = NOW()
		WHERE status = 'pending' AND end_time <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
