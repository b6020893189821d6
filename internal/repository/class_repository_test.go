package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

var classDetailColumns = []string{
	"id", "class_date", "start_time", "dance_type", "hall_id", "teacher_id", "current_capacity", "created_at", "updated_at",
	"hall_number", "hall_capacity", "teacher_name", "specialization", "remaining_slots",
}

func TestClassRepositoryListWindow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.class_date >= $1 AND c.class_date <= $2 AND c.dance_type = $3 ORDER BY c.class_date ASC, c.start_time ASC")).
		WithArgs("2025-03-03", "2025-03-17", "Salsa").
		WillReturnRows(sqlmock.NewRows(classDetailColumns).
			AddRow("c-1", "2025-03-05", "18:30:00", "Salsa", "h-1", "t-1", 4, now, now, 1, 10, "Irina Baranova", "Latin", 6))

	classes, err := repo.List(context.Background(), models.ClassFilter{
		StartDate: models.NewDate(2025, time.March, 3),
		EndDate:   models.NewDate(2025, time.March, 17),
		DanceType: "Salsa",
	})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 6, classes[0].RemainingSlots)
	assert.Equal(t, "Wednesday", classes[0].DayOfWeek)
	assert.Equal(t, "18:30:00", classes[0].StartTime.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListAvailableForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("NOT EXISTS (SELECT 1 FROM attendance a WHERE a.class_id = c.id AND a.student_id = $2) AND c.current_capacity < h.capacity")).
		WithArgs("2025-03-03", "stu-1").
		WillReturnRows(sqlmock.NewRows(classDetailColumns))

	classes, err := repo.List(context.Background(), models.ClassFilter{
		StartDate:        models.NewDate(2025, time.March, 3),
		ExcludeStudentID: "stu-1",
		OnlyWithRoom:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryLockByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_date", "start_time", "dance_type", "hall_id", "teacher_id", "current_capacity", "created_at", "updated_at"}).
			AddRow("c-1", "2025-03-05", "18:30:00", "Salsa", "h-1", "t-1", 4, now, now))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	class, err := repo.LockByID(context.Background(), tx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 4, class.CurrentCapacity)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositorySlotTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE hall_id = $1 AND class_date = $2 AND start_time = $3 AND id::text <> $4")).
		WithArgs("h-1", "2025-03-05", "18:30:00", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.SlotTaken(context.Background(), nil, "h-1", models.NewDate(2025, time.March, 5), models.NewClockTime(18, 30), "")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateSlotCollision(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), "2025-03-05", "18:30:00", "Salsa", "h-1", "t-1", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "classes_hall_slot_key"})

	err := repo.Create(context.Background(), nil, &models.Class{
		ClassDate: models.NewDate(2025, time.March, 5),
		StartTime: models.NewClockTime(18, 30),
		DanceType: "Salsa",
		HallID:    "h-1",
		TeacherID: "t-1",
	})
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDecrementCapacityForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes c SET current_capacity = GREATEST(c.current_capacity - 1, 0)")).
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DecrementCapacityForStudent(context.Background(), nil, "stu-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
