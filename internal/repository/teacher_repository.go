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

// TeacherRepository provides persistence for teacher profiles.
type TeacherRepository struct {
	executor
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{executor{db: db}}
}

const teacherDetailSelect = `SELECT t.id, t.user_id, t.full_name, t.experience, t.specialization, t.phone, t.created_at, t.updated_at, u.email
FROM teachers t
JOIN users u ON u.id = t.user_id`

// List returns every teacher ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherDetail, error) {
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, teacherDetailSelect+" ORDER BY t.full_name ASC"); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, teacherDetailSelect+" WHERE t.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &teacher, nil
}

// FindByUserID resolves the teacher profile of an account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, teacherDetailSelect+" WHERE t.user_id = $1", userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by user: %w", err)
	}
	return &teacher, nil
}

// Exists reports whether the teacher id resolves, inside exec when given.
func (r *TeacherRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.pick(exec), &exists, `SELECT EXISTS(SELECT 1 FROM teachers WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check teacher: %w", err)
	}
	return exists, nil
}

// HasClassesFrom reports whether the teacher leads any class on or after day.
func (r *TeacherRepository) HasClassesFrom(ctx context.Context, exec sqlx.ExtContext, teacherID string, day models.Date) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM classes WHERE teacher_id = $1 AND class_date >= $2)`
	if err := sqlx.GetContext(ctx, r.pick(exec), &exists, query, teacherID, day); err != nil {
		return false, fmt.Errorf("check teacher classes: %w", err)
	}
	return exists, nil
}

// Create inserts a teacher profile.
func (r *TeacherRepository) Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, user_id, full_name, experience, specialization, phone, created_at, updated_at)
        VALUES (:id, :user_id, :full_name, :experience, :specialization, :phone, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", translate(err))
	}
	return nil
}

// Update overwrites the mutable profile fields.
func (r *TeacherRepository) Update(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET full_name = :full_name, experience = :experience, specialization = :specialization, phone = :phone, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher profile.
func (r *TeacherRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
