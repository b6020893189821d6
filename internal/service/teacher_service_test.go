package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type teacherRepoStub struct {
	log      *callLog
	teachers map[string]*models.TeacherDetail
	busy     bool
	busyDay  models.Date
}

func (s *teacherRepoStub) List(ctx context.Context) ([]models.TeacherDetail, error) {
	out := make([]models.TeacherDetail, 0, len(s.teachers))
	for _, t := range s.teachers {
		out = append(out, *t)
	}
	return out, nil
}

func (s *teacherRepoStub) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	if t, ok := s.teachers[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	for _, t := range s.teachers {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *teacherRepoStub) HasClassesFrom(ctx context.Context, exec sqlx.ExtContext, teacherID string, day models.Date) (bool, error) {
	s.log.add("teachers.has_classes_from")
	s.busyDay = day
	return s.busy, nil
}

func (s *teacherRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	s.log.add("teachers.create")
	teacher.ID = "t-new"
	return nil
}

func (s *teacherRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	s.log.add("teachers.update")
	return nil
}

func (s *teacherRepoStub) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	s.log.add("teachers.delete")
	return nil
}

type teacherClassStoreStub struct {
	log        *callLog
	lastFilter models.ClassFilter
	classes    []models.ClassDetail
}

func (s *teacherClassStoreStub) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, error) {
	s.lastFilter = filter
	return s.classes, nil
}

func (s *teacherClassStoreStub) DeleteByTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string) error {
	s.log.add("classes.delete_by_teacher")
	return nil
}

type teacherAttendanceRemoverStub struct {
	log *callLog
}

func (s teacherAttendanceRemoverStub) DeleteByTeacherClasses(ctx context.Context, exec sqlx.ExtContext, teacherID string) error {
	s.log.add("attendance.delete_by_teacher_classes")
	return nil
}

type teacherFixture struct {
	svc      *TeacherService
	log      *callLog
	repo     *teacherRepoStub
	classes  *teacherClassStoreStub
	accounts *accountRepoStub
}

func newTeacherFixture(t *testing.T, db txProvider) *teacherFixture {
	t.Helper()
	log := &callLog{}
	repo := &teacherRepoStub{log: log, teachers: map[string]*models.TeacherDetail{
		"t-1": {Teacher: models.Teacher{ID: "t-1", UserID: "u-9", FullName: "Irina Baranova", Experience: 12, Specialization: "Latin"}, Email: "irina@studio.test"},
	}}
	classes := &teacherClassStoreStub{log: log}
	accounts := &accountRepoStub{log: log}
	svc := NewTeacherService(TeacherServiceParams{
		DB:         db,
		Teachers:   repo,
		Accounts:   accounts,
		Classes:    classes,
		Attendance: teacherAttendanceRemoverStub{log: log},
	})
	svc.today = func() models.Date { return models.NewDate(2025, time.March, 1) }
	return &teacherFixture{svc: svc, log: log, repo: repo, classes: classes, accounts: accounts}
}

func TestTeacherServiceCreate(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTeacherFixture(t, db)

	teacher, err := f.svc.Create(context.Background(), dto.CreateTeacherRequest{
		Email:          "oleg@studio.test",
		Password:       "pas-de-deux",
		FullName:       "Oleg Smirnov",
		Experience:     50,
		Specialization: "Hip-hop",
		Phone:          "79990000002",
	}, "admin-user")
	require.NoError(t, err)
	assert.Equal(t, "t-new", teacher.ID)
	assert.Equal(t, "u-new", teacher.UserID)
	assert.Equal(t, models.RoleTeacher, f.accounts.created[0].Role)
	assert.Equal(t, []string{"users.email_taken", "users.create", "teachers.create"}, f.log.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherServiceCreateRejectsExperience(t *testing.T) {
	f := newTeacherFixture(t, noopTxProvider{})

	_, err := f.svc.Create(context.Background(), dto.CreateTeacherRequest{
		Email:          "oleg@studio.test",
		Password:       "pas-de-deux",
		FullName:       "Oleg Smirnov",
		Experience:     51,
		Specialization: "Hip-hop",
		Phone:          "79990000002",
	}, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.log.calls)
}

func TestTeacherServiceDeleteBlockedByUpcomingClasses(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newTeacherFixture(t, db)
	f.repo.busy = true

	err := f.svc.Delete(context.Background(), "t-1", "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "2025-03-01", f.repo.busyDay.String())
	assert.Equal(t, []string{"teachers.has_classes_from"}, f.log.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherServiceDeleteCascade(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newTeacherFixture(t, db)

	require.NoError(t, f.svc.Delete(context.Background(), "t-1", "admin-user"))
	assert.Equal(t, []string{
		"teachers.has_classes_from",
		"attendance.delete_by_teacher_classes",
		"classes.delete_by_teacher",
		"teachers.delete",
		"users.delete",
	}, f.log.calls)
	require.Len(t, f.accounts.audits, 1)
	assert.Equal(t, models.AuditActionProfileDelete, f.accounts.audits[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherServiceScheduleDefaultsToToday(t *testing.T) {
	f := newTeacherFixture(t, noopTxProvider{})

	_, err := f.svc.Schedule(context.Background(), "t-1", models.Date{})
	require.NoError(t, err)
	assert.Equal(t, "t-1", f.classes.lastFilter.TeacherID)
	assert.Equal(t, "2025-03-01", f.classes.lastFilter.StartDate.String())
}

func TestTeacherServiceScheduleUnknownTeacher(t *testing.T) {
	f := newTeacherFixture(t, noopTxProvider{})

	_, err := f.svc.Schedule(context.Background(), "missing", models.Date{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
