package repositories

import (
	"context"
	"errors"

	"slotshare/internal/common"
	"slotshare/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantCode, email string) (*models.User, error)
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_code, email, password_hash, display_name, unit_identifier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.TenantCode, user.Email, user.PasswordHash, user.DisplayName, user.UnitIdentifier)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, tenant_code, email, password_hash, display_name, unit_identifier, created_at, updated_at
		FROM users
		WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(&user.ID, &user.TenantCode, &user.Email, &user.PasswordHash, &user.DisplayName, &user.UnitIdentifier, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantCode, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, tenant_code, email, password_hash, display_name, unit_identifier, created_at, updated_at
		FROM users
		WHERE tenant_code = $1 AND email = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, email).Scan(&user.ID, &user.TenantCode, &user.Email, &user.PasswordHash, &user.DisplayName, &user.UnitIdentifier, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
