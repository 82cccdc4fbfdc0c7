package services

import (
	"context"
	"testing"
	"time"

	"slotshare/internal/common"
	"slotshare/internal/middleware"
	"slotshare/internal/models"
	"slotshare/internal/ratelimit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-test-secret-test-secr"

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo   *MockUserRepo
	tenantRepo *MockTenantRepo
	limiter    *ratelimit.Limiter
	service    AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.userRepo = new(MockUserRepo)
	s.tenantRepo = new(MockTenantRepo)
	s.limiter = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 5, 15*time.Minute)
	s.service = NewAuthService(s.userRepo, s.tenantRepo, s.limiter, testJWTSecret, 24*time.Hour)
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.userRepo.AssertExpectations(s.T())
	s.tenantRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) activeTenant() *models.Tenant {
	return &models.Tenant{Code: "maple-court", DisplayName: "Maple Court", Status: models.TenantStatusActive}
}

func (s *AuthServiceTestSuite) TestRegister_CreatesUser() {
	s.tenantRepo.On("GetByCode", mock.Anything, "maple-court").Return(s.activeTenant(), nil)
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(nil, common.ErrNotFound)
	s.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.TenantCode == "maple-court" &&
			u.Email == "alice@example.com" &&
			u.PasswordHash != "" &&
			u.PasswordHash != "hunter2secret"
	})).Return(nil)

	user, err := s.service.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "Alice@Example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.NoError(err)
	s.Equal("alice@example.com", user.Email, "email should be normalized")
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2secret")))
}

func (s *AuthServiceTestSuite) TestRegister_ShortPassword() {
	_, err := s.service.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "short",
		DisplayName: "Alice",
	})
	s.ErrorIs(err, common.ErrValidation)
}

func (s *AuthServiceTestSuite) TestRegister_SuspendedTenant() {
	s.tenantRepo.On("GetByCode", mock.Anything, "maple-court").Return(
		&models.Tenant{Code: "maple-court", Status: models.TenantStatusSuspended}, nil)

	_, err := s.service.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.ErrorIs(err, common.ErrValidation)
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	s.tenantRepo.On("GetByCode", mock.Anything, "maple-court").Return(s.activeTenant(), nil)
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(
		&models.User{ID: uuid.New(), Email: "alice@example.com"}, nil)

	_, err := s.service.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.ErrorIs(err, common.ErrValidation)
}

func (s *AuthServiceTestSuite) TestRegister_LimiterRunsBeforeAnyLookup() {
	req := &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, 15*time.Minute)
	svc := NewAuthService(s.userRepo, s.tenantRepo, limiter, testJWTSecret, 24*time.Hour)

	s.tenantRepo.On("GetByCode", mock.Anything, "maple-court").Return(s.activeTenant(), nil).Once()
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(nil, common.ErrNotFound).Once()
	s.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	_, err := svc.Register(context.Background(), req)
	s.NoError(err)

	// throttled attempt: no tenant lookup, no email probe
	_, err = svc.Register(context.Background(), req)
	s.ErrorIs(err, common.ErrRateLimited)
	s.tenantRepo.AssertNumberOfCalls(s.T(), "GetByCode", 1)
	s.userRepo.AssertNumberOfCalls(s.T(), "GetByEmail", 1)
}

func (s *AuthServiceTestSuite) TestRegister_LimiterKeyIncludesTenant() {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, 15*time.Minute)
	svc := NewAuthService(s.userRepo, s.tenantRepo, limiter, testJWTSecret, 24*time.Hour)

	s.tenantRepo.On("GetByCode", mock.Anything, "maple-court").Return(s.activeTenant(), nil).Once()
	s.tenantRepo.On("GetByCode", mock.Anything, "oak-lane").Return(
		&models.Tenant{Code: "oak-lane", DisplayName: "Oak Lane", Status: models.TenantStatusActive}, nil).Once()
	s.userRepo.On("GetByEmail", mock.Anything, mock.Anything, "alice@example.com").Return(nil, common.ErrNotFound).Twice()
	s.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.NoError(err)

	// the same email under another tenant has its own registration budget
	_, err = svc.Register(context.Background(), &RegisterRequest{
		TenantCode:  "oak-lane",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.NoError(err)

	// a repeat under the first tenant is throttled
	_, err = svc.Register(context.Background(), &RegisterRequest{
		TenantCode:  "maple-court",
		Email:       "alice@example.com",
		Password:    "hunter2secret",
		DisplayName: "Alice",
	})
	s.ErrorIs(err, common.ErrRateLimited)
}

func (s *AuthServiceTestSuite) storedUser(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return &models.User{
		ID:           uuid.New(),
		TenantCode:   "maple-court",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		DisplayName:  "Alice",
	}
}

func (s *AuthServiceTestSuite) TestLogin_IssuesTokenWithSessionClaims() {
	user := s.storedUser("hunter2secret")
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(user, nil)

	signed, got, err := s.service.Login(context.Background(), &LoginRequest{
		TenantCode: "maple-court",
		Email:      "alice@example.com",
		Password:   "hunter2secret",
	})
	s.NoError(err)
	s.Equal(user, got)

	claims := &middleware.SessionClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	s.NoError(err)
	s.Equal(user.ID.String(), claims.Subject)
	s.Equal("maple-court", claims.TenantCode)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := s.storedUser("hunter2secret")
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(user, nil)

	_, _, err := s.service.Login(context.Background(), &LoginRequest{
		TenantCode: "maple-court",
		Email:      "alice@example.com",
		Password:   "wrong-password",
	})
	s.ErrorIs(err, common.ErrNotAuthorized)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUserLooksLikeBadCredentials() {
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "nobody@example.com").Return(nil, common.ErrNotFound)

	_, _, err := s.service.Login(context.Background(), &LoginRequest{
		TenantCode: "maple-court",
		Email:      "nobody@example.com",
		Password:   "whatever123",
	})
	s.ErrorIs(err, common.ErrNotAuthorized)
}

func (s *AuthServiceTestSuite) TestLogin_ThrottledAfterMaxAttempts() {
	user := s.storedUser("hunter2secret")
	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(user, nil).Times(5)

	req := &LoginRequest{TenantCode: "maple-court", Email: "alice@example.com", Password: "wrong-password"}
	for i := 0; i < 5; i++ {
		_, _, err := s.service.Login(context.Background(), req)
		s.ErrorIs(err, common.ErrNotAuthorized)
	}

	// attempt 6 is throttled before the user lookup
	_, _, err := s.service.Login(context.Background(), req)
	s.ErrorIs(err, common.ErrRateLimited)
	s.userRepo.AssertNumberOfCalls(s.T(), "GetByEmail", 5)
}

func (s *AuthServiceTestSuite) TestLogin_LimiterKeyIncludesTenant() {
	user := s.storedUser("hunter2secret")
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, 15*time.Minute)
	svc := NewAuthService(s.userRepo, s.tenantRepo, limiter, testJWTSecret, 24*time.Hour)

	s.userRepo.On("GetByEmail", mock.Anything, "maple-court", "alice@example.com").Return(user, nil).Once()
	s.userRepo.On("GetByEmail", mock.Anything, "oak-lane", "alice@example.com").Return(nil, common.ErrNotFound).Once()

	_, _, err := svc.Login(context.Background(), &LoginRequest{TenantCode: "maple-court", Email: "alice@example.com", Password: "hunter2secret"})
	s.NoError(err)

	// the same email under another tenant has its own budget
	_, _, err = svc.Login(context.Background(), &LoginRequest{TenantCode: "oak-lane", Email: "alice@example.com", Password: "hunter2secret"})
	s.ErrorIs(err, common.ErrNotAuthorized)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
