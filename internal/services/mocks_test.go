package services

import (
	"context"
	"time"

	"slotshare/internal/models"
	"slotshare/internal/repositories"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepo struct {
	mock.Mock
}

func (m *MockTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepo) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepo) RotateCode(ctx context.Context, oldCode, newCode string) error {
	args := m.Called(ctx, oldCode, newCode)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, tenantCode, email string) (*models.User, error) {
	args := m.Called(ctx, tenantCode, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockSlotRepo struct {
	mock.Mock
}

func (m *MockSlotRepo) Create(ctx context.Context, slot *models.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Slot, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockSlotRepo) Update(ctx context.Context, slot *models.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockSlotRepo) List(ctx context.Context, tenantCode string, filter *models.SlotFilter) ([]*models.Slot, error) {
	args := m.Called(ctx, tenantCode, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

type MockSlotPhotoRepo struct {
	mock.Mock
}

func (m *MockSlotPhotoRepo) Create(ctx context.Context, photo *models.SlotPhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockSlotPhotoRepo) ListBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) ([]*models.SlotPhoto, error) {
	args := m.Called(ctx, tenantCode, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SlotPhoto), args.Error(1)
}

type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Book(ctx context.Context, params repositories.BookParams) (*models.Reservation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationRepo) CancelNonTerminal(ctx context.Context, tenantCode string, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantCode, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepo) List(ctx context.Context, tenantCode string, callerID uuid.UUID, filter *models.ReservationFilter) ([]*models.Reservation, error) {
	args := m.Called(ctx, tenantCode, callerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *MockReservationRepo) CountActiveBySlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantCode, slotID)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepo) MarkNoShows(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) (*models.Slot, error) {
	args := m.Called(ctx, tenantCode, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockCacheService) SetSlot(ctx context.Context, slot *models.Slot, ttl time.Duration) error {
	args := m.Called(ctx, slot, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSlot(ctx context.Context, tenantCode string, slotID uuid.UUID) error {
	args := m.Called(ctx, tenantCode, slotID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenant(ctx context.Context, tenantCode string) error {
	args := m.Called(ctx, tenantCode)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Client() *redis.Client {
	return nil
}
