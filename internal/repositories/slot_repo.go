package repositories

import (
	"context"
	"errors"
	"fmt"

	"slotshare/internal/common"
	"slotshare/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *models.Slot) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Slot, error)
	Update(ctx context.Context, slot *models.Slot) error
	List(ctx context.Context, tenantCode string, filter *models.SlotFilter) ([]*models.Slot, error)
}

type slotRepo struct {
	db Database
}

func NewSlotRepo(db Database) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, slot *models.Slot) error {
	query := `
		INSERT INTO slots (id, tenant_code, owner_id, label, category, price_per_hour, auto_confirm, lifecycle_state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, slot.ID, slot.TenantCode, slot.OwnerID, slot.Label, slot.Category, slot.PricePerHour, slot.AutoConfirm, slot.LifecycleState)
	if isUniqueViolation(err) {
		return common.ErrDuplicateLabel
	}
	return err
}

func (r *slotRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Slot, error) {
	slot := &models.Slot{}
	query := `
		SELECT id, tenant_code, owner_id, label, category, price_per_hour, auto_confirm, lifecycle_state, created_at, updated_at
		FROM slots
		WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(&slot.ID, &slot.TenantCode, &slot.OwnerID, &slot.Label, &slot.Category, &slot.PricePerHour, &slot.AutoConfirm, &slot.LifecycleState, &slot.CreatedAt, &slot.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// Update rewrites the mutable columns only. tenant_code and owner_id are
// WHERE predicates, never SET targets.
func (r *slotRepo) Update(ctx context.Context, slot *models.Slot) error {
	query := `
		UPDATE slots
		SET label = $1, category = $2, price_per_hour = $3, auto_confirm = $4, lifecycle_state = $5, updated_at = NOW()
		WHERE tenant_code = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, slot.Label, slot.Category, slot.PricePerHour, slot.AutoConfirm, slot.LifecycleState, slot.TenantCode, slot.ID)
	if isUniqueViolation(err) {
		return common.ErrDuplicateLabel
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *slotRepo) List(ctx context.Context, tenantCode string, filter *models.SlotFilter) ([]*models.Slot, error) {
	query := `
		SELECT id, tenant_code, owner_id, label, category, price_per_hour, auto_confirm, lifecycle_state, created_at, updated_at
		FROM slots
		WHERE tenant_code = $1
	`
	args := []any{tenantCode}
	argPos := 2

	if filter.LifecycleState != "" {
		query += fmt.Sprintf(" AND lifecycle_state = $%d", argPos)
		args = append(args, filter.LifecycleState)
		argPos++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, *filter.Category)
		argPos++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price_per_hour >= $%d", argPos)
		args = append(args, *filter.MinPrice)
		argPos++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price_per_hour <= $%d", argPos)
		args = append(args, *filter.MaxPrice)
		argPos++
	}

	if filter.SortByPrice {
		query += " ORDER BY price_per_hour ASC NULLS LAST, created_at ASC"
	} else {
		query += " ORDER BY created_at ASC"
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		slot := &models.Slot{}
		if err := rows.Scan(&slot.ID, &slot.TenantCode, &slot.OwnerID, &slot.Label, &slot.Category, &slot.PricePerHour, &slot.AutoConfirm, &slot.LifecycleState, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
