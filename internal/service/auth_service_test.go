package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	findErr   error
	auditErr  error
	auditLogs []*models.AuditLog
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return m.auditErr
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("plie-releve"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{users: map[string]*models.User{
		"anna@studio.test": {ID: "u-1", Email: "anna@studio.test", PasswordHash: string(hash), Role: models.RoleStudent},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "studio"})
	return svc, repo
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@studio.test", Password: "plie-releve", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "anna@studio.test", claims.Subject)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@studio.test", Password: "nope"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Empty(t, repo.auditLogs)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@studio.test", Password: "plie-releve"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.NotEmpty(t, appErr.Details)
}

func TestAuthServiceAuditFailureDoesNotBlockLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.auditErr = errors.New("audit table locked")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@studio.test", Password: "plie-releve"})
	assert.NoError(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@studio.test", Password: "plie-releve"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)
	claims := &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "anna@studio.test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), forged)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenDeletedUser(t *testing.T) {
	svc, repo := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@studio.test", Password: "plie-releve"})
	require.NoError(t, err)

	delete(repo.users, "anna@studio.test")
	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
