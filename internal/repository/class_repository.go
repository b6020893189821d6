package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// ClassRepository persists scheduled classes.
type ClassRepository struct {
	executor
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{executor{db: db}}
}

const classColumns = "id, class_date, start_time, dance_type, hall_id, teacher_id, current_capacity, created_at, updated_at"

const classDetailSelect = `SELECT c.id, c.class_date, c.start_time, c.dance_type, c.hall_id, c.teacher_id, c.current_capacity, c.created_at, c.updated_at,
    h.hall_number, h.capacity AS hall_capacity, t.full_name AS teacher_name, t.specialization,
    (h.capacity - c.current_capacity) AS remaining_slots
FROM classes c
JOIN halls h ON h.id = c.hall_id
JOIN teachers t ON t.id = c.teacher_id`

// List returns the schedule matching filter ordered by date and time.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, error) {
	var conditions []string
	var args []interface{}

	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("c.class_date >= $%d", len(args)))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("c.class_date <= $%d", len(args)))
	}
	if filter.DanceType != "" {
		args = append(args, filter.DanceType)
		conditions = append(conditions, fmt.Sprintf("c.dance_type = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)))
	}
	if filter.ExcludeStudentID != "" {
		args = append(args, filter.ExcludeStudentID)
		conditions = append(conditions, fmt.Sprintf("NOT EXISTS (SELECT 1 FROM attendance a WHERE a.class_id = c.id AND a.student_id = $%d)", len(args)))
	}
	if filter.OnlyWithRoom {
		conditions = append(conditions, "c.current_capacity < h.capacity")
	}

	query := classDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.class_date ASC, c.start_time ASC"

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	for i := range classes {
		classes[i].DayOfWeek = classes[i].ClassDate.Weekday().String()
	}
	return classes, nil
}

// FindDetailByID returns one class joined with hall and teacher data.
func (r *ClassRepository) FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, classDetailSelect+" WHERE c.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class detail: %w", err)
	}
	class.DayOfWeek = class.ClassDate.Weekday().String()
	return &class, nil
}

// FindByID loads a class, inside exec when given.
func (r *ClassRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	return r.get(ctx, exec, "SELECT "+classColumns+" FROM classes WHERE id = $1", id)
}

// LockByID loads a class and holds its row lock until the transaction ends.
func (r *ClassRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	return r.get(ctx, exec, "SELECT "+classColumns+" FROM classes WHERE id = $1 FOR UPDATE", id)
}

func (r *ClassRepository) get(ctx context.Context, exec sqlx.ExtContext, query, id string) (*models.Class, error) {
	var class models.Class
	if err := sqlx.GetContext(ctx, r.pick(exec), &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// SlotTaken reports whether another class occupies the hall at date and time.
func (r *ClassRepository) SlotTaken(ctx context.Context, exec sqlx.ExtContext, hallID string, date models.Date, at models.ClockTime, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM classes WHERE hall_id = $1 AND class_date = $2 AND start_time = $3 AND id::text <> $4)`
	var taken bool
	if err := sqlx.GetContext(ctx, r.pick(exec), &taken, query, hallID, date, at, excludeID); err != nil {
		return false, fmt.Errorf("check hall slot: %w", err)
	}
	return taken, nil
}

// TeacherBusy reports whether the teacher already leads a class at date and time.
func (r *ClassRepository) TeacherBusy(ctx context.Context, exec sqlx.ExtContext, teacherID string, date models.Date, at models.ClockTime, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM classes WHERE teacher_id = $1 AND class_date = $2 AND start_time = $3 AND id::text <> $4)`
	var busy bool
	if err := sqlx.GetContext(ctx, r.pick(exec), &busy, query, teacherID, date, at, excludeID); err != nil {
		return false, fmt.Errorf("check teacher slot: %w", err)
	}
	return busy, nil
}

// Create inserts a class with an empty roster.
func (r *ClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CurrentCapacity = 0
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, class_date, start_time, dance_type, hall_id, teacher_id, current_capacity, created_at, updated_at)
        VALUES (:id, :class_date, :start_time, :dance_type, :hall_id, :teacher_id, :current_capacity, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, class); err != nil {
		return fmt.Errorf("create class: %w", translate(err))
	}
	return nil
}

// Update overwrites the scheduling fields. The roster counter is untouched.
func (r *ClassRepository) Update(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET class_date = :class_date, start_time = :start_time, dance_type = :dance_type,
        hall_id = :hall_id, teacher_id = :teacher_id, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, class); err != nil {
		return fmt.Errorf("update class: %w", translate(err))
	}
	return nil
}

// IncrementCapacity books one more dancer into the class.
func (r *ClassRepository) IncrementCapacity(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE classes SET current_capacity = current_capacity + 1, updated_at = NOW() WHERE id = $1`
	if _, err := r.pick(exec).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment class capacity: %w", err)
	}
	return nil
}

// DecrementCapacityForStudent frees the student's seat in every class they hold one in.
func (r *ClassRepository) DecrementCapacityForStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error {
	const query = `UPDATE classes c SET current_capacity = GREATEST(c.current_capacity - 1, 0), updated_at = NOW()
        FROM attendance a WHERE a.class_id = c.id AND a.student_id = $1`
	if _, err := r.pick(exec).ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("release student seats: %w", err)
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// DeleteByTeacher removes every class led by the teacher.
func (r *ClassRepository) DeleteByTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM classes WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("delete teacher classes: %w", err)
	}
	return nil
}
