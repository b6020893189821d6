package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/service"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type reportService interface {
	Format(raw string) (string, error)
	AttendanceStats(ctx context.Context, query dto.AttendanceReportQuery) (*models.AttendanceStats, error)
	ExportAttendance(ctx context.Context, query dto.AttendanceReportQuery) (*service.ReportFile, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Attendance godoc
// @Summary Attendance statistics
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param dance_type query string false "Dance type"
// @Param teacher_id query string false "Teacher ID"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	var query dto.AttendanceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	format, err := h.reports.Format(query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	if format == service.ReportFormatJSON {
		stats, err := h.reports.AttendanceStats(c.Request.Context(), query)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, stats, nil)
		return
	}

	file, err := h.reports.ExportAttendance(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
