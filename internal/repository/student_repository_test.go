package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

var studentDetailColumns = []string{"id", "user_id", "full_name", "date_of_birth", "gender", "phone", "created_at", "updated_at", "email"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentDetailColumns).
		AddRow("stu-1", "u-1", "Anna Pavlova", "2001-02-03", "F", "79991234567", now, now, "anna@studio.test")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = s.user_id WHERE (LOWER(s.full_name) LIKE $1 OR LOWER(u.email) LIKE $1) ORDER BY s.full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs("%anna%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id WHERE")).
		WithArgs("%anna%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Anna"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "anna@studio.test", students[0].Email)
	assert.Equal(t, "2001-02-03", students[0].DateOfBirth.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(studentDetailColumns).
			AddRow("stu-1", "u-1", "Anna Pavlova", now, "F", "79991234567", now, now, "anna@studio.test"))

	student, err := repo.FindByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	dob := models.NewDate(2001, time.February, 3)
	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "u-1", "Anna Pavlova", "2001-02-03", "F", "79991234567", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{UserID: "u-1", FullName: "Anna Pavlova", DateOfBirth: dob, Gender: models.GenderFemale, Phone: "79991234567"}
	require.NoError(t, repo.Create(context.Background(), nil, student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
