package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type attendanceService interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.AttendanceDetail, error)
	Mark(ctx context.Context, id string, req dto.MarkAttendanceRequest) (*models.Attendance, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
	students   studentResolver
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService, students studentResolver) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, students: students}
}

// Mark godoc
// @Summary Mark attendance
// @Description Moving to Present spends one class from the student's earliest-expiring subscription
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.MarkAttendanceRequest true "Presence"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.attendance.Mark(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// ByStudent godoc
// @Summary Student attendance history
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/student/{id} [get]
func (h *AttendanceHandler) ByStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !authorizeStudent(c, h.students, id, models.RoleAdmin, models.RoleTeacher) {
		return
	}
	rows, err := h.attendance.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ByClass godoc
// @Summary Class roster
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/class/{id} [get]
func (h *AttendanceHandler) ByClass(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.attendance.ListByClass(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
