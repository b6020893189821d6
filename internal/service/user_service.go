package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
}

type studentProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
}

type teacherProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error)
}

type adminRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Admin, error)
	Create(ctx context.Context, exec sqlx.ExtContext, admin *models.Admin) error
}

// AdminBootstrap describes the administrator created on first start.
type AdminBootstrap struct {
	Email    string
	Password string
	FullName string
}

// UserServiceParams groups the collaborators of UserService.
type UserServiceParams struct {
	DB       txProvider
	Users    userRepository
	Students studentProfileReader
	Teachers teacherProfileReader
	Admins   adminRepository
	Logger   *zap.Logger
}

// UserService resolves accounts to their role profiles.
type UserService struct {
	db       txProvider
	users    userRepository
	students studentProfileReader
	teachers teacherProfileReader
	admins   adminRepository
	logger   *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(p UserServiceParams) *UserService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &UserService{db: p.DB, users: p.Users, students: p.Students, teachers: p.Teachers, admins: p.Admins, logger: p.Logger}
}

// Profile returns the current user's role-specific profile.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found", "failed to load user")
	}
	profile := &models.UserProfile{ID: user.ID, Email: user.Email, Role: user.Role}

	switch user.Role {
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, storeError(err, "student profile not found", "failed to load student profile")
		}
		profile.Name = student.FullName
		profile.StudentID = student.ID
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, storeError(err, "teacher profile not found", "failed to load teacher profile")
		}
		profile.Name = teacher.FullName
		profile.TeacherID = teacher.ID
	case models.RoleAdmin:
		admin, err := s.admins.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, storeError(err, "admin profile not found", "failed to load admin profile")
		}
		profile.Name = admin.FullName
		profile.AdminID = admin.ID
	}
	return profile, nil
}

// BootstrapAdmin creates the configured administrator unless the email is
// already registered. It reports whether an account was created.
func (s *UserService) BootstrapAdmin(ctx context.Context, cfg AdminBootstrap) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		return false, nil
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, storeError(err, "", "failed to look up admin account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	fullName := strings.TrimSpace(cfg.FullName)
	if fullName == "" {
		fullName = "Administrator"
	}

	user := &models.User{Email: email, PasswordHash: string(hash), Role: models.RoleAdmin}
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			return storeError(err, "", "admin email already registered")
		}
		if err := s.admins.Create(ctx, tx, &models.Admin{UserID: user.ID, FullName: fullName}); err != nil {
			return storeError(err, "", "failed to create admin profile")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return true, nil
}
