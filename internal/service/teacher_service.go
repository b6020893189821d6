package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.TeacherDetail, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error)
	HasClassesFrom(ctx context.Context, exec sqlx.ExtContext, teacherID string, day models.Date) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error
	Update(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type teacherClassStore interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, error)
	DeleteByTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string) error
}

type teacherAttendanceRemover interface {
	DeleteByTeacherClasses(ctx context.Context, exec sqlx.ExtContext, teacherID string) error
}

// TeacherServiceParams groups the collaborators of TeacherService.
type TeacherServiceParams struct {
	DB         txProvider
	Teachers   teacherRepository
	Accounts   accountRepository
	Classes    teacherClassStore
	Attendance teacherAttendanceRemover
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// TeacherService manages teacher accounts and schedules.
type TeacherService struct {
	db         txProvider
	repo       teacherRepository
	accounts   accountRepository
	classes    teacherClassStore
	attendance teacherAttendanceRemover
	validator  *validator.Validate
	logger     *zap.Logger
	today      func() models.Date
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(p TeacherServiceParams) *TeacherService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &TeacherService{
		db:         p.DB,
		repo:       p.Teachers,
		accounts:   p.Accounts,
		classes:    p.Classes,
		attendance: p.Attendance,
		validator:  p.Validator,
		logger:     p.Logger,
		today:      models.Today,
	}
}

// List returns all teachers.
func (s *TeacherService) List(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

// GetByUserID resolves the teacher profile behind an account.
func (s *TeacherService) GetByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "teacher profile not found", "failed to load teacher")
	}
	return teacher, nil
}

// Schedule lists the classes a teacher leads on or after from.
func (s *TeacherService) Schedule(ctx context.Context, teacherID string, from models.Date) ([]models.ClassDetail, error) {
	if _, err := s.Get(ctx, teacherID); err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = s.today()
	}
	classes, err := s.classes.List(ctx, models.ClassFilter{TeacherID: teacherID, StartDate: from})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher schedule")
	}
	return classes, nil
}

// Create registers the account and the teacher profile in one transaction.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest, actorID string) (*models.TeacherDetail, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid teacher payload")
	}

	taken, err := s.accounts.EmailTaken(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{Email: req.Email, PasswordHash: string(hash), Role: models.RoleTeacher}
	teacher := &models.Teacher{
		FullName:       req.FullName,
		Experience:     req.Experience,
		Specialization: req.Specialization,
		Phone:          req.Phone,
	}
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, user); err != nil {
			return storeError(err, "", "email already registered")
		}
		teacher.UserID = user.ID
		if err := s.repo.Create(ctx, tx, teacher); err != nil {
			return storeError(err, "", "failed to create teacher")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.accounts, s.logger, actorID, models.AuditActionProfileCreate, models.AuditResourceTeacher, teacher.ID, teacher)
	return &models.TeacherDetail{Teacher: *teacher, Email: user.Email}, nil
}

// Update applies a partial update to a teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest, actorID string) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid teacher payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}

	emailChanged := false
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.EqualFold(email, detail.Email) {
			taken, err := s.accounts.EmailTaken(ctx, email, detail.UserID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
			}
			if taken {
				return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
			}
			emailChanged = true
		}
		detail.Email = email
	}
	if req.FullName != nil {
		detail.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Experience != nil {
		detail.Experience = *req.Experience
	}
	if req.Specialization != nil {
		detail.Specialization = *req.Specialization
	}
	if req.Phone != nil {
		detail.Phone = *req.Phone
	}

	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if emailChanged {
			if err := s.accounts.UpdateEmail(ctx, tx, detail.UserID, detail.Email); err != nil {
				return storeError(err, "", "email already registered")
			}
		}
		if err := s.repo.Update(ctx, tx, &detail.Teacher); err != nil {
			return storeError(err, "", "failed to update teacher")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.accounts, s.logger, actorID, models.AuditActionProfileUpdate, models.AuditResourceTeacher, detail.ID, detail)
	return detail, nil
}

// Delete removes a teacher with no classes from today on, together with
// their past classes and rosters.
func (s *TeacherService) Delete(ctx context.Context, id, actorID string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "teacher not found", "failed to load teacher")
	}

	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		busy, err := s.repo.HasClassesFrom(ctx, tx, id, s.today())
		if err != nil {
			return storeError(err, "", "failed to check teacher classes")
		}
		if busy {
			return appErrors.Clone(appErrors.ErrConflict, "teacher has scheduled classes")
		}
		if err := s.attendance.DeleteByTeacherClasses(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete attendance")
		}
		if err := s.classes.DeleteByTeacher(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete classes")
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete teacher")
		}
		if err := s.accounts.Delete(ctx, tx, detail.UserID); err != nil {
			return storeError(err, "", "failed to delete account")
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.accounts, s.logger, actorID, models.AuditActionProfileDelete, models.AuditResourceTeacher, id, detail)
	return nil
}
