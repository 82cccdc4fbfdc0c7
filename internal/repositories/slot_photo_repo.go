package repositories

import (
	"context"

	"slotshare/internal/models"

	"github.com/google/uuid"
)

type SlotPhotoRepository interface {
	Create(ctx context.Context, photo *models.SlotPhoto) error
	ListBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) ([]*models.SlotPhoto, error)
}

type slotPhotoRepo struct {
	db Database
}

func NewSlotPhotoRepo(db Database) SlotPhotoRepository {
	return &slotPhotoRepo{db: db}
}

func (r *slotPhotoRepo) Create(ctx context.Context, photo *models.SlotPhoto) error {
	query := `
		INSERT INTO slot_photos (id, tenant_code, slot_id, object_key, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, photo.ID, photo.TenantCode, photo.SlotID, photo.ObjectKey)
	return err
}

func (r *slotPhotoRepo) ListBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) ([]*models.SlotPhoto, error) {
	query := `
		SELECT id, tenant_code, slot_id, object_key, created_at
		FROM slot_photos
		WHERE tenant_code = $1 AND slot_id = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantCode, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.SlotPhoto
	for rows.Next() {
		photo := &models.SlotPhoto{}
		if err := rows.Scan(&photo.ID, &photo.TenantCode, &photo.SlotID, &photo.ObjectKey, &photo.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}
