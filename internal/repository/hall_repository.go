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

// HallRepository manages studio halls.
type HallRepository struct {
	executor
}

// NewHallRepository constructs a HallRepository.
func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{executor{db: db}}
}

const hallColumns = "id, hall_number, capacity, description, created_at, updated_at"

// List returns all halls ordered by number.
func (r *HallRepository) List(ctx context.Context) ([]models.Hall, error) {
	var halls []models.Hall
	if err := r.db.SelectContext(ctx, &halls, "SELECT "+hallColumns+" FROM halls ORDER BY hall_number ASC"); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// FindByID loads a hall, inside exec when given.
func (r *HallRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error) {
	var hall models.Hall
	if err := sqlx.GetContext(ctx, r.pick(exec), &hall, "SELECT "+hallColumns+" FROM halls WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find hall: %w", err)
	}
	return &hall, nil
}

// MaxBookedCapacity returns the highest current_capacity among the hall's classes.
func (r *HallRepository) MaxBookedCapacity(ctx context.Context, exec sqlx.ExtContext, hallID string) (int, error) {
	var booked int
	const query = `SELECT COALESCE(MAX(current_capacity), 0) FROM classes WHERE hall_id = $1`
	if err := sqlx.GetContext(ctx, r.pick(exec), &booked, query, hallID); err != nil {
		return 0, fmt.Errorf("max booked capacity: %w", err)
	}
	return booked, nil
}

// Create inserts a hall.
func (r *HallRepository) Create(ctx context.Context, hall *models.Hall) error {
	if hall.ID == "" {
		hall.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hall.CreatedAt = now
	hall.UpdatedAt = now
	const query = `INSERT INTO halls (id, hall_number, capacity, description, created_at, updated_at)
        VALUES (:id, :hall_number, :capacity, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hall); err != nil {
		return fmt.Errorf("create hall: %w", translate(err))
	}
	return nil
}

// Update overwrites the hall's number, capacity and description.
func (r *HallRepository) Update(ctx context.Context, exec sqlx.ExtContext, hall *models.Hall) error {
	hall.UpdatedAt = time.Now().UTC()
	const query = `UPDATE halls SET hall_number = :hall_number, capacity = :capacity, description = :description, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, hall); err != nil {
		return fmt.Errorf("update hall: %w", translate(err))
	}
	return nil
}

// LockByID loads a hall with a row lock held until the transaction ends.
func (r *HallRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error) {
	var hall models.Hall
	if err := sqlx.GetContext(ctx, r.pick(exec), &hall, "SELECT "+hallColumns+" FROM halls WHERE id = $1 FOR UPDATE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock hall: %w", err)
	}
	return &hall, nil
}

// LockShared loads a hall with a shared row lock. Readers checking seats hold
// it until commit, so a concurrent capacity change waits for them.
func (r *HallRepository) LockShared(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error) {
	var hall models.Hall
	if err := sqlx.GetContext(ctx, r.pick(exec), &hall, "SELECT "+hallColumns+" FROM halls WHERE id = $1 FOR SHARE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock hall shared: %w", err)
	}
	return &hall, nil
}
