package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/repositories"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	photoBucket    = "slot-photos"
	photoURLExpiry = 15 * time.Minute
)

// StorageService stores slot photos in MinIO and tracks them per slot.
// Uploads are owner-only; reads are tenant-scoped like everything else.
type StorageService interface {
	EnsureBucket(ctx context.Context) error
	UploadSlotPhoto(ctx context.Context, session common.Session, slotID uuid.UUID, reader io.Reader, size int64, contentType string) (*models.SlotPhoto, error)
	ListSlotPhotos(ctx context.Context, session common.Session, slotID uuid.UUID) ([]*models.SlotPhoto, error)
}

type storageService struct {
	client    *minio.Client
	slotRepo  repositories.SlotRepository
	photoRepo repositories.SlotPhotoRepository
}

func NewStorageService(endpoint, accessKey, secretKey string, useSSL bool, slotRepo repositories.SlotRepository, photoRepo repositories.SlotPhotoRepository) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &storageService{client: client, slotRepo: slotRepo, photoRepo: photoRepo}, nil
}

// EnsureBucket creates the photo bucket if it does not exist yet.
func (s *storageService) EnsureBucket(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, photoBucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, photoBucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *storageService) UploadSlotPhoto(ctx context.Context, session common.Session, slotID uuid.UUID, reader io.Reader, size int64, contentType string) (*models.SlotPhoto, error) {
	slot, err := s.slotRepo.GetByID(ctx, session.TenantCode, slotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != session.UserID {
		return nil, common.ErrNotOwner
	}

	photoID := uuid.New()
	objectKey := fmt.Sprintf("%s/%s/%s", session.TenantCode, slotID.String(), photoID.String())
	if _, err := s.client.PutObject(ctx, photoBucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	photo := &models.SlotPhoto{
		ID:         photoID,
		TenantCode: session.TenantCode,
		SlotID:     slotID,
		ObjectKey:  objectKey,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *storageService) ListSlotPhotos(ctx context.Context, session common.Session, slotID uuid.UUID) ([]*models.SlotPhoto, error) {
	// tenant-scoped slot load doubles as the existence check
	if _, err := s.slotRepo.GetByID(ctx, session.TenantCode, slotID); err != nil {
		return nil, err
	}

	photos, err := s.photoRepo.ListBySlot(ctx, session.TenantCode, slotID)
	if err != nil {
		return nil, err
	}
	for _, photo := range photos {
		url, err := s.client.PresignedGetObject(ctx, photoBucket, photo.ObjectKey, photoURLExpiry, nil)
		if err != nil {
			return nil, fmt.Errorf("presign photo url: %w", err)
		}
		photo.URL = url.String()
	}
	return photos, nil
}
