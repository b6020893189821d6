package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type attendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.AttendanceDetail, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Attendance, error)
	UpdatePresence(ctx context.Context, exec sqlx.ExtContext, id string, presence models.Presence) error
}

type subscriptionLedger interface {
	LockUsable(ctx context.Context, exec sqlx.ExtContext, studentID string, day models.Date) (*models.Subscription, error)
	UpdateBalance(ctx context.Context, exec sqlx.ExtContext, sub *models.Subscription) error
}

// AttendanceServiceParams groups the collaborators of AttendanceService.
type AttendanceServiceParams struct {
	DB            txProvider
	Attendance    attendanceRepository
	Subscriptions subscriptionLedger
	Metrics       *MetricsService
	Validator     *validator.Validate
	Logger        *zap.Logger
}

// AttendanceService records presence and charges subscriptions for it.
type AttendanceService struct {
	db            txProvider
	repo          attendanceRepository
	subscriptions subscriptionLedger
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	today         func() models.Date
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(p AttendanceServiceParams) *AttendanceService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &AttendanceService{
		db:            p.DB,
		repo:          p.Attendance,
		subscriptions: p.Subscriptions,
		metrics:       p.Metrics,
		validator:     p.Validator,
		logger:        p.Logger,
		today:         models.Today,
	}
}

// ListByStudent returns a student's attendance history, newest class first.
func (s *AttendanceService) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceDetail, error) {
	rows, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	if rows == nil {
		rows = []models.AttendanceDetail{}
	}
	return rows, nil
}

// ListByClass returns the roster of a class.
func (s *AttendanceService) ListByClass(ctx context.Context, classID string) ([]models.AttendanceDetail, error) {
	rows, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	if rows == nil {
		rows = []models.AttendanceDetail{}
	}
	return rows, nil
}

// Mark sets the presence of an attendance row. Moving into Present spends one
// class from the subscription that expires first; repeating the current state
// changes nothing and undoing Present is refused.
func (s *AttendanceService) Mark(ctx context.Context, id string, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid attendance payload")
	}
	next, err := models.ParsePresence(req.Presence)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "presence must be Registered or Present")
	}

	var (
		row    *models.Attendance
		result = ResultOK
	)
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		row, err = s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return storeError(err, "attendance not found", "failed to load attendance")
		}
		move, err := row.Presence.Transition(next)
		if err != nil {
			if errors.Is(err, models.ErrPresenceReversal) {
				return appErrors.Clone(appErrors.ErrConflict, "attendance already marked present")
			}
			return appErrors.Clone(appErrors.ErrValidation, "unsupported presence change")
		}
		if move.NoOp {
			result = ResultNoop
			return nil
		}

		if move.ConsumesClass {
			sub, err := s.subscriptions.LockUsable(ctx, tx, row.StudentID, s.today())
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrNoActiveSubscription
			}
			if err != nil {
				return storeError(err, "", "failed to load subscription")
			}
			if err := sub.ConsumeClass(); err != nil {
				return appErrors.ErrNoActiveSubscription
			}
			if err := s.subscriptions.UpdateBalance(ctx, tx, sub); err != nil {
				return storeError(err, "", "failed to update subscription")
			}
		}
		if err := s.repo.UpdatePresence(ctx, tx, row.ID, next); err != nil {
			return storeError(err, "attendance not found", "failed to update attendance")
		}
		row.Presence = next
		return nil
	})
	if err != nil {
		s.metrics.RecordAttendanceMark(outcome(err))
		return nil, err
	}
	s.metrics.RecordAttendanceMark(result)
	return row, nil
}
