package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type studentResolver interface {
	GetByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
}

type teacherResolver interface {
	GetByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireClaims aborts with 401 when the request carries no claims.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// pathID reads a UUID path parameter. Malformed ids cannot name a stored
// record and are reported as not found.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, name+" not found"))
		return "", false
	}
	return raw, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// ownStudentID resolves the student profile of the caller.
func ownStudentID(c *gin.Context, students studentResolver, claims *models.JWTClaims) (string, bool) {
	student, err := students.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return student.ID, true
}

// authorizeStudent lets staff through and limits students to their own record.
func authorizeStudent(c *gin.Context, students studentResolver, studentID string, staff ...models.UserRole) bool {
	claims, ok := requireClaims(c)
	if !ok {
		return false
	}
	for _, role := range staff {
		if claims.Role == role {
			return true
		}
	}
	if claims.Role == models.RoleStudent {
		own, ok := ownStudentID(c, students, claims)
		if !ok {
			return false
		}
		if own == studentID {
			return true
		}
	}
	response.Error(c, appErrors.ErrForbidden)
	return false
}
