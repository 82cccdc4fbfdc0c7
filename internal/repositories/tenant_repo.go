package repositories

import (
	"context"
	"errors"
	"fmt"

	"slotshare/internal/common"
	"slotshare/internal/models"

	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	RotateCode(ctx context.Context, oldCode, newCode string) error
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (code, display_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.Code, tenant.DisplayName, tenant.Status)
	if isUniqueViolation(err) {
		return common.ErrCodeCollision
	}
	return err
}

func (r *tenantRepo) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT code, display_name, status, created_at, updated_at
		FROM tenants
		WHERE code = $1
	`
	err := r.db.QueryRow(ctx, query, code).Scan(&tenant.Code, &tenant.DisplayName, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// dependent tables rewritten by a code rotation, in cascade order
var tenantDependents = []string{"users", "slots", "reservations", "slot_photos"}

// RotateCode renames a tenant's code and cascades the rename to every
// dependent row in a single transaction. Row counts are taken before the
// cascade and verified against the affected-row counts and a zero-orphan
// check afterwards; any mismatch rolls the whole rotation back.
func (r *tenantRepo) RotateCode(ctx context.Context, oldCode, newCode string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM tenants WHERE code = $1 FOR UPDATE`, oldCode).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return err
	}

	var collision bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenants WHERE code = $1)`, newCode).Scan(&collision); err != nil {
		return err
	}
	if collision {
		return common.ErrCodeCollision
	}

	before := make(map[string]int64, len(tenantDependents))
	for _, table := range tenantDependents {
		var n int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_code = $1`, table)
		if err := tx.QueryRow(ctx, query, oldCode).Scan(&n); err != nil {
			return err
		}
		before[table] = n
	}

	if _, err := tx.Exec(ctx, `UPDATE tenants SET code = $1, updated_at = NOW() WHERE code = $2`, newCode, oldCode); err != nil {
		return err
	}

	for _, table := range tenantDependents {
		query := fmt.Sprintf(`UPDATE %s SET tenant_code = $1 WHERE tenant_code = $2`, table)
		tag, err := tx.Exec(ctx, query, newCode, oldCode)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != before[table] {
			return fmt.Errorf("tenant rotation: %s moved %d rows, expected %d", table, tag.RowsAffected(), before[table])
		}
	}

	// zero-orphan post-condition: nothing may still reference the old code
	for _, table := range tenantDependents {
		var remaining int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_code = $1`, table)
		if err := tx.QueryRow(ctx, query, oldCode).Scan(&remaining); err != nil {
			return err
		}
		if remaining != 0 {
			return fmt.Errorf("tenant rotation: %d orphan rows left in %s under %q", remaining, table, oldCode)
		}
	}

	return tx.Commit(ctx)
}
