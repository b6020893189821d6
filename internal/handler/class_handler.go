package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, query dto.ClassListQuery) ([]models.ClassDetail, error)
	Available(ctx context.Context, studentID string) ([]models.ClassDetail, error)
	Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
}

type enroller interface {
	Enroll(ctx context.Context, studentID, classID string) (*models.Attendance, error)
}

// ClassHandler exposes the schedule and enrollment endpoints.
type ClassHandler struct {
	classes  classService
	enroll   enroller
	students studentResolver
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService, enroll enroller, students studentResolver) *ClassHandler {
	return &ClassHandler{classes: classes, enroll: enroll, students: students}
}

// List godoc
// @Summary Class schedule
// @Description Classes between start_date (default today) and end_date (default start + 14 days)
// @Tags Classes
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param dance_type query string false "Dance type"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var query dto.ClassListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	classes, err := h.classes.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Available godoc
// @Summary Classes open to the current student
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/available [get]
func (h *ClassHandler) Available(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	studentID, ok := ownStudentID(c, h.students, claims)
	if !ok {
		return
	}
	classes, err := h.classes.Available(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Create godoc
// @Summary Schedule class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.UpdateClassRequest true "Class patch"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.classes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enroll godoc
// @Summary Enroll in class
// @Description Students enroll themselves; admins pass student_id
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.EnrollRequest false "Student to enroll (admin only)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/enroll [post]
func (h *ClassHandler) Enroll(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var studentID string
	switch claims.Role {
	case models.RoleAdmin:
		if _, err := uuid.Parse(req.StudentID); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id must be a valid id"))
			return
		}
		studentID = req.StudentID
	case models.RoleStudent:
		if studentID, ok = ownStudentID(c, h.students, claims); !ok {
			return
		}
		if req.StudentID != "" && req.StudentID != studentID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	default:
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	row, err := h.enroll.Enroll(c.Request.Context(), studentID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}
