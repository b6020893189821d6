package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// AdminRepository stores administrator profiles.
type AdminRepository struct {
	executor
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{executor{db: db}}
}

// FindByUserID resolves the admin profile of an account.
func (r *AdminRepository) FindByUserID(ctx context.Context, userID string) (*models.Admin, error) {
	var admin models.Admin
	const query = `SELECT id, user_id, full_name, created_at FROM admins WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &admin, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by user: %w", err)
	}
	return &admin, nil
}

// Create inserts an admin profile.
func (r *AdminRepository) Create(ctx context.Context, exec sqlx.ExtContext, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO admins (id, user_id, full_name, created_at) VALUES (:id, :user_id, :full_name, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, admin); err != nil {
		return fmt.Errorf("create admin: %w", translate(err))
	}
	return nil
}
