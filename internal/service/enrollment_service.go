package service

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type enrollmentClassStore interface {
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
	IncrementCapacity(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type enrollmentAttendanceStore interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, row *models.Attendance) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// EnrollmentServiceParams groups the collaborators of EnrollmentService.
type EnrollmentServiceParams struct {
	DB         txProvider
	Students   studentReader
	Classes    enrollmentClassStore
	Halls      hallLookup
	Attendance enrollmentAttendanceStore
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// EnrollmentService books students into classes.
type EnrollmentService struct {
	db         txProvider
	students   studentReader
	classes    enrollmentClassStore
	halls      hallLookup
	attendance enrollmentAttendanceStore
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(p EnrollmentServiceParams) *EnrollmentService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		db:         p.DB,
		students:   p.Students,
		classes:    p.Classes,
		halls:      p.Halls,
		attendance: p.Attendance,
		metrics:    p.Metrics,
		logger:     p.Logger,
	}
}

// Enroll registers the student for the class. The class row stays locked
// until commit so concurrent enrollments cannot overfill the hall, and the
// hall row is share-locked so its capacity cannot shrink underneath the check.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, classID string) (*models.Attendance, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		s.metrics.RecordEnrollment(ResultRejected)
		return nil, storeError(err, "student not found", "failed to load student")
	}

	var row *models.Attendance
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		class, err := s.classes.LockByID(ctx, tx, classID)
		if err != nil {
			return storeError(err, "class not found", "failed to load class")
		}
		hall, err := s.halls.LockShared(ctx, tx, class.HallID)
		if err != nil {
			return storeError(err, "hall not found", "failed to load hall")
		}
		if !class.HasRoom(hall.Capacity) {
			return appErrors.ErrCapacityExceeded
		}
		enrolled, err := s.attendance.Exists(ctx, tx, studentID, classID)
		if err != nil {
			return storeError(err, "", "failed to check enrollment")
		}
		if enrolled {
			return appErrors.ErrDuplicateEnrollment
		}

		row = &models.Attendance{
			StudentID: studentID,
			ClassID:   classID,
			TeacherID: class.TeacherID,
			Presence:  models.PresenceRegistered,
		}
		if err := s.attendance.Create(ctx, tx, row); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return appErrors.ErrDuplicateEnrollment
			}
			return storeError(err, "", "failed to create attendance")
		}
		if err := s.classes.IncrementCapacity(ctx, tx, classID); err != nil {
			return storeError(err, "class not found", "failed to update class capacity")
		}
		return nil
	})
	s.metrics.RecordEnrollment(outcome(err))
	if err != nil {
		return nil, err
	}
	s.logger.Info("student enrolled", zap.String("student_id", studentID), zap.String("class_id", classID))
	return row, nil
}

// outcome buckets an operation error into a metrics result label.
func outcome(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, appErrors.ErrCapacityExceeded):
		return ResultCapacityExceeded
	case errors.Is(err, appErrors.ErrDuplicateEnrollment):
		return ResultDuplicate
	case errors.Is(err, appErrors.ErrNoActiveSubscription):
		return ResultNoActiveSubscription
	case errors.Is(err, appErrors.ErrInternal):
		return ResultError
	default:
		return ResultRejected
	}
}
