package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mie-portal/portal-api/internal/models"
)

const adminColumns = "id, account_id, admin_id, admin_level, department, created_at, updated_at"

// AdminRepository manages persistence for admin role records.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns all admins, newest first.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins ORDER BY created_at DESC", adminColumns)
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// FindByID fetches an admin by its storage identity.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE id = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByAccountID fetches an admin by its account back-reference.
func (r *AdminRepository) FindByAccountID(ctx context.Context, accountID string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE account_id = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, accountID); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExistsByAdminID checks if the admin identifier is already in use.
func (r *AdminRepository) ExistsByAdminID(ctx context.Context, adminID string) (bool, error) {
	const query = `SELECT 1 FROM admins WHERE admin_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, adminID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admin id: %w", err)
	}
	return true, nil
}

// Create inserts a new admin record.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now

	const query = `INSERT INTO admins (id, account_id, admin_id, admin_level, department, created_at, updated_at)
		VALUES (:id, :account_id, :admin_id, :admin_level, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// DeleteByAccountID removes the admin record backing the given account.
func (r *AdminRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	const query = `DELETE FROM admins WHERE account_id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("delete admin by account: %w", err)
	}
	return nil
}
