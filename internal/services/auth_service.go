package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/middleware"
	"slotshare/internal/models"
	"slotshare/internal/ratelimit"
	"slotshare/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login. Both paths consult the rate
// limiter before any lookup that could reveal whether an identity exists.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (string, *models.User, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	limiter    *ratelimit.Limiter
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository, limiter *ratelimit.Limiter, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		limiter:    limiter,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

type RegisterRequest struct {
	TenantCode     string `json:"tenant_code" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	DisplayName    string `json:"display_name" validate:"required"`
	UnitIdentifier string `json:"unit_identifier"`
}

type LoginRequest struct {
	TenantCode string `json:"tenant_code" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a resident under an existing active tenant. The limiter
// runs first: nothing below it may execute for a throttled identifier.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	tenantCode := strings.TrimSpace(req.TenantCode)

	allowed, err := s.limiter.Allow(ctx, ratelimit.NamespaceRegister, tenantCode+":"+email)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		return nil, common.ErrRateLimited
	}

	if email == "" || !strings.Contains(email, "@") {
		return nil, common.Validation("invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, common.Validation("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, common.Validation("display name is required")
	}

	tenant, err := s.tenantRepo.GetByCode(ctx, tenantCode)
	if err != nil {
		return nil, fmt.Errorf("tenant lookup: %w", err)
	}
	if tenant.Status != models.TenantStatusActive {
		return nil, common.Validation("tenant is not accepting registrations")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, tenant.Code, email); err == nil && existing != nil {
		return nil, common.Validation("email already registered")
	} else if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		TenantCode:     tenant.Code,
		Email:          email,
		PasswordHash:   string(hash),
		DisplayName:    strings.TrimSpace(req.DisplayName),
		UnitIdentifier: strings.TrimSpace(req.UnitIdentifier),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login authenticates and issues an HS256 session token carrying
// (sub, tenant_code). A throttled attempt returns ErrRateLimited, which the
// handler renders identically to a credential failure.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	email := normalizeEmail(req.Email)
	tenantCode := strings.TrimSpace(req.TenantCode)

	allowed, err := s.limiter.Allow(ctx, ratelimit.NamespaceLogin, tenantCode+":"+email)
	if err != nil {
		return "", nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		return "", nil, common.ErrRateLimited
	}

	user, err := s.userRepo.GetByEmail(ctx, tenantCode, email)
	if errors.Is(err, common.ErrNotFound) {
		return "", nil, common.ErrNotAuthorized
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, common.ErrNotAuthorized
	}

	now := time.Now()
	claims := middleware.SessionClaims{
		TenantCode: user.TenantCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "slotshare",
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, user, nil
}
