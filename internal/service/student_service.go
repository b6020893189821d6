package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type accountRepository interface {
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
	UpdateEmail(ctx context.Context, exec sqlx.ExtContext, id, email string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type seatReleaser interface {
	DecrementCapacityForStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error
}

// studentRecordsRemover is satisfied by the attendance, subscription and payment stores.
type studentRecordsRemover interface {
	DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) error
}

// StudentServiceParams groups the collaborators of StudentService.
type StudentServiceParams struct {
	DB            txProvider
	Students      studentRepository
	Accounts      accountRepository
	Classes       seatReleaser
	Attendance    studentRecordsRemover
	Subscriptions studentRecordsRemover
	Payments      studentRecordsRemover
	Validator     *validator.Validate
	Logger        *zap.Logger
}

// StudentService handles student use-cases.
type StudentService struct {
	db            txProvider
	repo          studentRepository
	accounts      accountRepository
	classes       seatReleaser
	attendance    studentRecordsRemover
	subscriptions studentRecordsRemover
	payments      studentRecordsRemover
	validator     *validator.Validate
	logger        *zap.Logger
	today         func() models.Date
}

// NewStudentService constructs the student service.
func NewStudentService(p StudentServiceParams) *StudentService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &StudentService{
		db:            p.DB,
		repo:          p.Students,
		accounts:      p.Accounts,
		classes:       p.Classes,
		attendance:    p.Attendance,
		subscriptions: p.Subscriptions,
		payments:      p.Payments,
		validator:     p.Validator,
		logger:        p.Logger,
		today:         models.Today,
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student with the account email.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// GetByUserID resolves the student profile behind an account.
func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "student profile not found", "failed to load student")
	}
	return student, nil
}

// Create registers the account and the student profile in one transaction.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest, actorID string) (*models.StudentDetail, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid student payload")
	}
	if err := validateBirthDate(req.DateOfBirth, s.today()); err != nil {
		return nil, err
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

	user := &models.User{Email: req.Email, PasswordHash: string(hash), Role: models.RoleStudent}
	student := &models.Student{
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Phone:       req.Phone,
	}
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, user); err != nil {
			return storeError(err, "", "email already registered")
		}
		student.UserID = user.ID
		if err := s.repo.Create(ctx, tx, student); err != nil {
			return storeError(err, "", "failed to create student")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, models.AuditActionProfileCreate, student.ID, student)
	return &models.StudentDetail{Student: *student, Email: user.Email}, nil
}

// Update applies a partial update. The email collision check runs before any write.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest, actorID string) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid student payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
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
	if req.DateOfBirth != nil {
		if err := validateBirthDate(*req.DateOfBirth, s.today()); err != nil {
			return nil, err
		}
		detail.DateOfBirth = *req.DateOfBirth
	}
	if req.FullName != nil {
		detail.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Gender != nil {
		detail.Gender = *req.Gender
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
		if err := s.repo.Update(ctx, tx, &detail.Student); err != nil {
			return storeError(err, "", "failed to update student")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, models.AuditActionProfileUpdate, detail.ID, detail)
	return detail, nil
}

// Delete frees the student's seats and removes every dependent record,
// then the profile and the account, in one transaction.
func (s *StudentService) Delete(ctx context.Context, id, actorID string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "student not found", "failed to load student")
	}

	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.classes.DecrementCapacityForStudent(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to release class seats")
		}
		if err := s.attendance.DeleteByStudent(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete attendance")
		}
		if err := s.subscriptions.DeleteByStudent(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete subscriptions")
		}
		if err := s.payments.DeleteByStudent(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete payments")
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return storeError(err, "", "failed to delete student")
		}
		if err := s.accounts.Delete(ctx, tx, detail.UserID); err != nil {
			return storeError(err, "", "failed to delete account")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, actorID, models.AuditActionProfileDelete, id, detail)
	return nil
}

func (s *StudentService) audit(ctx context.Context, actorID, action, resourceID string, payload interface{}) {
	recordAudit(ctx, s.accounts, s.logger, actorID, action, models.AuditResourceStudent, resourceID, payload)
}

// validateBirthDate keeps dates of birth within [1900-01-01, today].
func validateBirthDate(dob, today models.Date) error {
	if dob.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid student payload").WithDetails("DateOfBirth: required")
	}
	if dob.Before(models.EarliestBirthDate) || dob.After(today) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid student payload").
			WithDetails("DateOfBirth: must be between " + models.EarliestBirthDate.String() + " and " + today.String())
	}
	return nil
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit writes an audit row; failures are logged and swallowed.
func recordAudit(ctx context.Context, repo auditWriter, logger *zap.Logger, actorID, action, resource, resourceID string, payload interface{}) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		CreatedAt:  time.Now().UTC(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			entry.Payload = raw
		}
	}
	if err := repo.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}
