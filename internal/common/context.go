package common

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	TenantCodeKey contextKey = "tenant_code"
)

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantCodeFromContext extracts the session tenant code from the request context.
// This is the only legitimate source of tenant scope for queries.
func GetTenantCodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(TenantCodeKey).(string)
	if code == "" {
		return "", false
	}
	return code, ok
}

// Session is the resolved tenant session: who is calling, and for which tenant.
type Session struct {
	UserID     uuid.UUID
	TenantCode string
}

// ResolveSession pulls the session identity out of an echo request context.
// A missing user means the JWT middleware did not run or rejected the token
// (Unauthenticated); a present user with no tenant code is the distinct
// NoTenantAssigned failure.
func ResolveSession(c echo.Context) (Session, error) {
	ctx := c.Request().Context()
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	tenantCode, ok := GetTenantCodeFromContext(ctx)
	if !ok {
		return Session{}, ErrNoTenantAssigned
	}
	return Session{UserID: userID, TenantCode: tenantCode}, nil
}

// Pagination is the normalized page/limit pair used by all listings.
type Pagination struct {
	Page  int
	Limit int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NormalizePagination bounds page/limit to sane values: page >= 1,
// 1 <= limit <= 100, default limit 20.
func NormalizePagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset converts the page number to a SQL offset.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
