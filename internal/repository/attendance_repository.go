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

// AttendanceRepository persists class registrations and presence marks.
type AttendanceRepository struct {
	executor
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{executor{db: db}}
}

const attendanceColumns = "id, student_id, class_id, teacher_id, presence, created_at, updated_at"

const attendanceDetailSelect = `SELECT a.id, a.student_id, a.class_id, a.teacher_id, a.presence, a.created_at, a.updated_at,
    c.class_date, c.start_time, c.dance_type, s.full_name AS student_name, t.full_name AS teacher_name
FROM attendance a
JOIN classes c ON c.id = a.class_id
JOIN students s ON s.id = a.student_id
JOIN teachers t ON t.id = a.teacher_id`

// ListByStudent returns a student's registrations, newest classes first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceDetail, error) {
	var rows []models.AttendanceDetail
	query := attendanceDetailSelect + " WHERE a.student_id = $1 ORDER BY c.class_date DESC, c.start_time DESC"
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return rows, nil
}

// ListByClass returns the roster of a class ordered by student name.
func (r *AttendanceRepository) ListByClass(ctx context.Context, classID string) ([]models.AttendanceDetail, error) {
	var rows []models.AttendanceDetail
	query := attendanceDetailSelect + " WHERE a.class_id = $1 ORDER BY s.full_name ASC"
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("list class attendance: %w", err)
	}
	return rows, nil
}

// FindDetailByID returns one attendance row with class context.
func (r *AttendanceRepository) FindDetailByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	var row models.AttendanceDetail
	if err := r.db.GetContext(ctx, &row, attendanceDetailSelect+" WHERE a.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &row, nil
}

// Exists reports whether the student is already registered for the class.
func (r *AttendanceRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM attendance WHERE student_id = $1 AND class_id = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.pick(exec), &exists, query, studentID, classID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// LockByID loads an attendance row and holds its row lock.
func (r *AttendanceRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Attendance, error) {
	var row models.Attendance
	if err := sqlx.GetContext(ctx, r.pick(exec), &row, "SELECT "+attendanceColumns+" FROM attendance WHERE id = $1 FOR UPDATE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock attendance: %w", err)
	}
	return &row, nil
}

// Create registers a student for a class.
func (r *AttendanceRepository) Create(ctx context.Context, exec sqlx.ExtContext, row *models.Attendance) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, class_id, teacher_id, presence, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :teacher_id, :presence, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.pick(exec), query, row); err != nil {
		return fmt.Errorf("create attendance: %w", translate(err))
	}
	return nil
}

// UpdatePresence stores a new presence mark.
func (r *AttendanceRepository) UpdatePresence(ctx context.Context, exec sqlx.ExtContext, id string, presence models.Presence) error {
	const query = `UPDATE attendance SET presence = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.pick(exec).ExecContext(ctx, query, presence, id); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	return nil
}

// UpdateTeacherForClass points every registration of a class at its new teacher.
func (r *AttendanceRepository) UpdateTeacherForClass(ctx context.Context, exec sqlx.ExtContext, classID, teacherID string) error {
	const query = `UPDATE attendance SET teacher_id = $1, updated_at = NOW() WHERE class_id = $2`
	if _, err := r.pick(exec).ExecContext(ctx, query, teacherID, classID); err != nil {
		return fmt.Errorf("update attendance teacher: %w", err)
	}
	return nil
}

// DeleteByClass removes a class's roster.
func (r *AttendanceRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM attendance WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete class attendance: %w", err)
	}
	return nil
}

// DeleteByStudent removes every registration of a student.
func (r *AttendanceRepository) DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error {
	if _, err := r.pick(exec).ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete student attendance: %w", err)
	}
	return nil
}

// DeleteByTeacherClasses removes the rosters of every class the teacher leads.
func (r *AttendanceRepository) DeleteByTeacherClasses(ctx context.Context, exec sqlx.ExtContext, teacherID string) error {
	const query = `DELETE FROM attendance WHERE class_id IN (SELECT id FROM classes WHERE teacher_id = $1)`
	if _, err := r.pick(exec).ExecContext(ctx, query, teacherID); err != nil {
		return fmt.Errorf("delete teacher attendance: %w", err)
	}
	return nil
}

// Stats aggregates attendance per date, dance type, teacher and presence.
func (r *AttendanceRepository) Stats(ctx context.Context, filter models.AttendanceStatsFilter) ([]models.AttendanceStatRow, error) {
	var conditions []string
	var args []interface{}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("c.class_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
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

	query := `SELECT c.class_date, c.dance_type, c.teacher_id, a.presence, COUNT(*) AS total
FROM attendance a
JOIN classes c ON c.id = a.class_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY c.class_date, c.dance_type, c.teacher_id, a.presence ORDER BY c.class_date ASC"

	var rows []models.AttendanceStatRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}
	return rows, nil
}
