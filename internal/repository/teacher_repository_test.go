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

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "full_name", "experience", "specialization", "phone", "created_at", "updated_at", "email"}).
		AddRow("t-1", "u-9", "Irina Baranova", 12, "Contemporary", "79990000001", now, now, "irina@studio.test")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = t.user_id ORDER BY t.full_name ASC")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 12, list[0].Experience)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryHasClassesFrom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	day := models.NewDate(2025, time.April, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM classes WHERE teacher_id = $1 AND class_date >= $2)")).
		WithArgs("t-1", "2025-04-01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	busy, err := repo.HasClassesFrom(context.Background(), nil, "t-1", day)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "u-9", "Irina Baranova", 12, "Contemporary", "79990000001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.Create(context.Background(), tx, &models.Teacher{UserID: "u-9", FullName: "Irina Baranova", Experience: 12, Specialization: "Contemporary", Phone: "79990000001"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
