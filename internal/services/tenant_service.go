package services

import (
	"context"
	"log"
	"regexp"
	"strings"

	"slotshare/internal/caching"
	"slotshare/internal/common"
	"slotshare/internal/models"
	"slotshare/internal/repositories"
)

// TenantService covers administrative tenant operations, most importantly
// the atomic code rotation used when a tenant code is compromised.
type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	RotateCode(ctx context.Context, oldCode, newCode string) error
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cache: cache}
}

type CreateTenantRequest struct {
	Code        string `json:"code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

var tenantCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{2,31}$`)

func validateTenantCode(code string) error {
	if !tenantCodePattern.MatchString(code) {
		return common.Validation("tenant code must be 3-32 characters of letters, digits and dashes")
	}
	return nil
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	code := strings.TrimSpace(req.Code)
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, common.Validation("display_name is required")
	}

	tenant := &models.Tenant{
		Code:        code,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Status:      models.TenantStatusActive,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	return s.tenantRepo.GetByCode(ctx, code)
}

// RotateCode renames a tenant and all rows referencing it in one
// transaction; partial application is impossible. Cached entries for the
// old code are dropped afterwards — they would otherwise serve rows under a
// code that no longer exists.
func (s *tenantService) RotateCode(ctx context.Context, oldCode, newCode string) error {
	oldCode = strings.TrimSpace(oldCode)
	newCode = strings.TrimSpace(newCode)
	if err := validateTenantCode(newCode); err != nil {
		return err
	}
	if oldCode == newCode {
		return common.Validation("new code must differ from the old code")
	}

	if err := s.tenantRepo.RotateCode(ctx, oldCode, newCode); err != nil {
		return err
	}

	if err := s.cache.InvalidateTenant(ctx, oldCode); err != nil {
		log.Printf("tenant cache invalidation after rotation failed: %v", err)
	}
	return nil
}
