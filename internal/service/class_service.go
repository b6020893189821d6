package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

// defaultScheduleWindow is how many days GET /classes covers without end_date.
const defaultScheduleWindow = 14

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error)
	SlotTaken(ctx context.Context, exec sqlx.ExtContext, hallID string, date models.Date, at models.ClockTime, excludeID string) (bool, error)
	TeacherBusy(ctx context.Context, exec sqlx.ExtContext, teacherID string, date models.Date, at models.ClockTime, excludeID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
	Update(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type hallLookup interface {
	LockShared(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error)
}

type teacherLookup interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

type classAttendanceStore interface {
	UpdateTeacherForClass(ctx context.Context, exec sqlx.ExtContext, classID, teacherID string) error
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error
}

// ClassServiceParams groups the collaborators of ClassService.
type ClassServiceParams struct {
	DB         txProvider
	Classes    classRepository
	Halls      hallLookup
	Teachers   teacherLookup
	Attendance classAttendanceStore
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// ClassService maintains the class schedule.
type ClassService struct {
	db         txProvider
	repo       classRepository
	halls      hallLookup
	teachers   teacherLookup
	attendance classAttendanceStore
	validator  *validator.Validate
	logger     *zap.Logger
	today      func() models.Date
}

// NewClassService constructs ClassService.
func NewClassService(p ClassServiceParams) *ClassService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &ClassService{
		db:         p.DB,
		repo:       p.Classes,
		halls:      p.Halls,
		teachers:   p.Teachers,
		attendance: p.Attendance,
		validator:  p.Validator,
		logger:     p.Logger,
		today:      models.Today,
	}
}

// List returns the schedule for a date window. Missing bounds default to
// today and two weeks after the start.
func (s *ClassService) List(ctx context.Context, query dto.ClassListQuery) ([]models.ClassDetail, error) {
	filter := models.ClassFilter{
		DanceType: strings.TrimSpace(query.DanceType),
		TeacherID: strings.TrimSpace(query.TeacherID),
	}

	filter.StartDate = s.today()
	if query.StartDate != "" {
		start, err := models.ParseDate(query.StartDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		filter.StartDate = start
	}
	filter.EndDate = filter.StartDate.AddDays(defaultScheduleWindow)
	if query.EndDate != "" {
		end, err := models.ParseDate(query.EndDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		filter.EndDate = end
	}
	if filter.EndDate.Before(filter.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	classes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.ClassDetail{}
	}
	return classes, nil
}

// Available lists upcoming classes with free seats that the student has not
// enrolled in yet.
func (s *ClassService) Available(ctx context.Context, studentID string) ([]models.ClassDetail, error) {
	classes, err := s.repo.List(ctx, models.ClassFilter{
		StartDate:        s.today(),
		ExcludeStudentID: studentID,
		OnlyWithRoom:     true,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available classes")
	}
	if classes == nil {
		classes = []models.ClassDetail{}
	}
	return classes, nil
}

// Get returns a class with hall and teacher details.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	class, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "class not found", "failed to load class")
	}
	return class, nil
}

// Create schedules a class with no seats taken.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	req.Type = strings.TrimSpace(req.Type)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid class payload")
	}
	if req.Date.IsZero() || req.Time.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date and time are required")
	}

	class := &models.Class{
		ClassDate: req.Date,
		StartTime: req.Time,
		DanceType: req.Type,
		HallID:    req.HallID,
		TeacherID: req.TeacherID,
	}
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.checkPlacement(ctx, tx, class, ""); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, class); err != nil {
			return storeError(err, "", "hall is already booked at this time")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("class scheduled", zap.String("class_id", class.ID), zap.String("hall_id", class.HallID), zap.String("date", class.ClassDate.String()))
	return class, nil
}

// Update patches a class and re-runs the placement checks. A teacher change is
// copied onto the class's attendance rows.
func (s *ClassService) Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid class payload")
	}

	var class *models.Class
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		class, err = s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return storeError(err, "class not found", "failed to load class")
		}
		previousTeacher := class.TeacherID

		if req.Date != nil {
			class.ClassDate = *req.Date
		}
		if req.Time != nil {
			class.StartTime = *req.Time
		}
		if req.Type != nil {
			class.DanceType = strings.TrimSpace(*req.Type)
		}
		if req.HallID != nil {
			class.HallID = *req.HallID
		}
		if req.TeacherID != nil {
			class.TeacherID = *req.TeacherID
		}
		if class.DanceType == "" {
			return appErrors.Clone(appErrors.ErrValidation, "type must not be empty")
		}

		hall, err := s.checkPlacement(ctx, tx, class, class.ID)
		if err != nil {
			return err
		}
		if class.CurrentCapacity > hall.Capacity {
			return appErrors.Clone(appErrors.ErrCapacityExceeded, "hall is too small for the enrolled students")
		}

		if err := s.repo.Update(ctx, tx, class); err != nil {
			return storeError(err, "", "hall is already booked at this time")
		}
		if class.TeacherID != previousTeacher {
			if err := s.attendance.UpdateTeacherForClass(ctx, tx, class.ID, class.TeacherID); err != nil {
				return storeError(err, "", "failed to update attendance teacher")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// Delete removes a class together with its attendance rows.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.repo.LockByID(ctx, tx, id); err != nil {
			return storeError(err, "class not found", "failed to load class")
		}
		if err := s.attendance.DeleteByClass(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete class attendance")
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete class")
		}
		return nil
	})
}

// checkPlacement resolves the hall and teacher of class and rejects a booked
// hall slot or a double-booked teacher.
func (s *ClassService) checkPlacement(ctx context.Context, tx sqlx.ExtContext, class *models.Class, excludeID string) (*models.Hall, error) {
	hall, err := s.halls.LockShared(ctx, tx, class.HallID)
	if err != nil {
		return nil, storeError(err, "hall not found", "failed to load hall")
	}
	exists, err := s.teachers.Exists(ctx, tx, class.TeacherID)
	if err != nil {
		return nil, storeError(err, "", "failed to load teacher")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	taken, err := s.repo.SlotTaken(ctx, tx, class.HallID, class.ClassDate, class.StartTime, excludeID)
	if err != nil {
		return nil, storeError(err, "", "failed to check hall slot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "hall is already booked at this time")
	}
	busy, err := s.repo.TeacherBusy(ctx, tx, class.TeacherID, class.ClassDate, class.StartTime, excludeID)
	if err != nil {
		return nil, storeError(err, "", "failed to check teacher schedule")
	}
	if busy {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already leads a class at this time")
	}
	return hall, nil
}
