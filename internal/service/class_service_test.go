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

const (
	testHallID    = "5b0e8f7c-5d3a-4a0e-9b53-8a2f4f1d0c11"
	testTeacherID = "1f3c2a77-0b1e-4c4e-8f4d-3b9e6a7d2e22"
	otherTeacher  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c33"
	smallHallID   = "7d2e1c4b-3a5f-4e6d-9c8b-2a1f0e9d8c44"
)

type classRepoStub struct {
	classes     map[string]*models.Class
	slotTaken   bool
	teacherBusy bool
	lastFilter  models.ClassFilter
	created     *models.Class
	updated     *models.Class
	log         *callLog
}

func (s *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *classRepoStub) FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	if c, ok := s.classes[id]; ok {
		return &models.ClassDetail{Class: *c}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	if c, ok := s.classes[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) SlotTaken(ctx context.Context, exec sqlx.ExtContext, hallID string, date models.Date, at models.ClockTime, excludeID string) (bool, error) {
	return s.slotTaken, nil
}

func (s *classRepoStub) TeacherBusy(ctx context.Context, exec sqlx.ExtContext, teacherID string, date models.Date, at models.ClockTime, excludeID string) (bool, error) {
	return s.teacherBusy, nil
}

func (s *classRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	class.ID = "c-new"
	s.created = class
	return nil
}

func (s *classRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	s.updated = class
	return nil
}

func (s *classRepoStub) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	s.log.add("classes.delete")
	return nil
}

type hallLookupStub struct{ halls map[string]*models.Hall }

func (s hallLookupStub) LockShared(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error) {
	if h, ok := s.halls[id]; ok {
		return h, nil
	}
	return nil, sql.ErrNoRows
}

type teacherLookupStub struct{ ids map[string]bool }

func (s teacherLookupStub) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	return s.ids[id], nil
}

type classAttendanceStub struct {
	teacherFor map[string]string
	log        *callLog
}

func (s *classAttendanceStub) UpdateTeacherForClass(ctx context.Context, exec sqlx.ExtContext, classID, teacherID string) error {
	s.teacherFor[classID] = teacherID
	return nil
}

func (s *classAttendanceStub) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	s.log.add("attendance.delete_by_class")
	return nil
}

type classFixture struct {
	svc        *ClassService
	repo       *classRepoStub
	attendance *classAttendanceStub
	log        *callLog
}

func newClassFixture(db txProvider) classFixture {
	log := &callLog{}
	repo := &classRepoStub{
		classes: map[string]*models.Class{
			"c-1": {
				ID:              "c-1",
				ClassDate:       models.NewDate(2025, time.March, 5),
				StartTime:       models.NewClockTime(18, 0),
				DanceType:       "Salsa",
				HallID:          testHallID,
				TeacherID:       testTeacherID,
				CurrentCapacity: 8,
			},
		},
		log: log,
	}
	attendance := &classAttendanceStub{teacherFor: map[string]string{}, log: log}
	svc := NewClassService(ClassServiceParams{
		DB:         db,
		Classes:    repo,
		Halls:      hallLookupStub{halls: map[string]*models.Hall{testHallID: {ID: testHallID, HallNumber: 1, Capacity: 10}, smallHallID: {ID: smallHallID, HallNumber: 2, Capacity: 5}}},
		Teachers:   teacherLookupStub{ids: map[string]bool{testTeacherID: true, otherTeacher: true}},
		Attendance: attendance,
	})
	svc.today = func() models.Date { return models.NewDate(2025, time.March, 1) }
	return classFixture{svc: svc, repo: repo, attendance: attendance, log: log}
}

func validCreateClass() dto.CreateClassRequest {
	return dto.CreateClassRequest{
		Date:      models.NewDate(2025, time.March, 10),
		Time:      models.NewClockTime(19, 30),
		Type:      "Tango",
		HallID:    testHallID,
		TeacherID: testTeacherID,
	}
}

func TestClassServiceListDefaultsWindow(t *testing.T) {
	f := newClassFixture(noopTxProvider{})

	classes, err := f.svc.List(context.Background(), dto.ClassListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Equal(t, "2025-03-01", f.repo.lastFilter.StartDate.String())
	assert.Equal(t, "2025-03-15", f.repo.lastFilter.EndDate.String())
}

func TestClassServiceListRejectsInvertedWindow(t *testing.T) {
	f := newClassFixture(noopTxProvider{})

	_, err := f.svc.List(context.Background(), dto.ClassListQuery{StartDate: "2025-03-10", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceAvailableFilters(t *testing.T) {
	f := newClassFixture(noopTxProvider{})

	_, err := f.svc.Available(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", f.repo.lastFilter.ExcludeStudentID)
	assert.True(t, f.repo.lastFilter.OnlyWithRoom)
	assert.True(t, f.repo.lastFilter.EndDate.IsZero())
}

func TestClassServiceCreate(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newClassFixture(db)

	class, err := f.svc.Create(context.Background(), validCreateClass())
	require.NoError(t, err)
	assert.Equal(t, "c-new", class.ID)
	assert.Equal(t, 0, f.repo.created.CurrentCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceCreateRejectsMissingDate(t *testing.T) {
	f := newClassFixture(noopTxProvider{})
	req := validCreateClass()
	req.Date = models.Date{}

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceCreateUnknownHall(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newClassFixture(db)
	req := validCreateClass()
	req.HallID = "00000000-0000-4000-8000-000000000000"

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Nil(t, f.repo.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceCreateSlotTaken(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newClassFixture(db)
	f.repo.slotTaken = true

	_, err := f.svc.Create(context.Background(), validCreateClass())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Nil(t, f.repo.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceCreateTeacherBusy(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newClassFixture(db)
	f.repo.teacherBusy = true

	_, err := f.svc.Create(context.Background(), validCreateClass())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceUpdatePropagatesTeacher(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newClassFixture(db)
	teacher := otherTeacher

	class, err := f.svc.Update(context.Background(), "c-1", dto.UpdateClassRequest{TeacherID: &teacher})
	require.NoError(t, err)
	assert.Equal(t, otherTeacher, class.TeacherID)
	assert.Equal(t, 8, f.repo.updated.CurrentCapacity)
	assert.Equal(t, otherTeacher, f.attendance.teacherFor["c-1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceUpdateIntoSmallerHall(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newClassFixture(db)
	hall := smallHallID

	_, err := f.svc.Update(context.Background(), "c-1", dto.UpdateClassRequest{HallID: &hall})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.Nil(t, f.repo.updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceDeleteCascade(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	f := newClassFixture(db)

	require.NoError(t, f.svc.Delete(context.Background(), "c-1"))
	assert.Equal(t, []string{"attendance.delete_by_class", "classes.delete"}, f.log.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassServiceDeleteMissing(t *testing.T) {
	db, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	f := newClassFixture(db)

	err := f.svc.Delete(context.Background(), "c-404")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.log.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
