package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type statsStub struct {
	rows   []models.AttendanceStatRow
	err    error
	filter models.AttendanceStatsFilter
}

func (s *statsStub) Stats(ctx context.Context, filter models.AttendanceStatsFilter) ([]models.AttendanceStatRow, error) {
	s.filter = filter
	return s.rows, s.err
}

func sampleStatRows() []models.AttendanceStatRow {
	march5 := models.NewDate(2025, time.March, 5)
	march6 := models.NewDate(2025, time.March, 6)
	return []models.AttendanceStatRow{
		{ClassDate: march5, DanceType: "Salsa", TeacherID: "t-1", Presence: models.PresencePresent, Total: 3},
		{ClassDate: march5, DanceType: "Salsa", TeacherID: "t-1", Presence: models.PresenceRegistered, Total: 1},
		{ClassDate: march6, DanceType: "Tango", TeacherID: "t-2", Presence: models.PresenceRegistered, Total: 2},
	}
}

func TestReportServiceAttendanceStats(t *testing.T) {
	repo := &statsStub{rows: sampleStatRows()}
	svc := NewReportService(repo, nil)

	stats, err := svc.AttendanceStats(context.Background(), dto.AttendanceReportQuery{DateFrom: "2025-03-01", DateTo: "2025-03-31", DanceType: "Salsa"})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalAttendance)
	assert.Equal(t, 3, stats.Present)
	assert.Equal(t, 50.0, stats.AttendanceRate)
	assert.Equal(t, map[string]int{"Salsa": 4, "Tango": 2}, stats.ByDanceType)
	assert.Equal(t, map[string]int{"t-1": 4, "t-2": 2}, stats.ByTeacher)
	assert.Equal(t, map[string]int{"2025-03-05": 4, "2025-03-06": 2}, stats.ByDate)
	require.NotNil(t, repo.filter.DateFrom)
	assert.Equal(t, "2025-03-01", repo.filter.DateFrom.String())
	assert.Equal(t, "Salsa", repo.filter.DanceType)
}

func TestReportServiceEmptyWindowHasZeroRate(t *testing.T) {
	svc := NewReportService(&statsStub{}, nil)

	stats, err := svc.AttendanceStats(context.Background(), dto.AttendanceReportQuery{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalAttendance)
	assert.Zero(t, stats.AttendanceRate)
	assert.NotNil(t, stats.ByDate)
}

func TestReportServiceRejectsInvertedWindow(t *testing.T) {
	svc := NewReportService(&statsStub{}, nil)

	_, err := svc.AttendanceStats(context.Background(), dto.AttendanceReportQuery{DateFrom: "2025-03-10", DateTo: "2025-03-01"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceStoreFailure(t *testing.T) {
	svc := NewReportService(&statsStub{err: errors.New("boom")}, nil)

	_, err := svc.AttendanceStats(context.Background(), dto.AttendanceReportQuery{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestReportServiceFormat(t *testing.T) {
	svc := NewReportService(&statsStub{}, nil)

	format, err := svc.Format("")
	require.NoError(t, err)
	assert.Equal(t, ReportFormatJSON, format)
	format, err = svc.Format(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ReportFormatPDF, format)
	format, err = svc.Format("xlsx")
	require.NoError(t, err)
	assert.Equal(t, ReportFormatXLSX, format)
	_, err = svc.Format("docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceExportCSV(t *testing.T) {
	svc := NewReportService(&statsStub{rows: sampleStatRows()}, nil)

	file, err := svc.ExportAttendance(context.Background(), dto.AttendanceReportQuery{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "attendance-report.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	body := string(file.Body)
	assert.Contains(t, body, "summary,attendance_rate,50.00\n")
	assert.Contains(t, body, "dance_type,Salsa,4\n")
	assert.Contains(t, body, "teacher,t-2,2\n")
}

func TestReportServiceExportPDF(t *testing.T) {
	svc := NewReportService(&statsStub{rows: sampleStatRows()}, nil)

	file, err := svc.ExportAttendance(context.Background(), dto.AttendanceReportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF-")))
}

func TestReportServiceExportXLSX(t *testing.T) {
	svc := NewReportService(&statsStub{rows: sampleStatRows()}, nil)

	file, err := svc.ExportAttendance(context.Background(), dto.AttendanceReportQuery{Format: "xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "attendance-report.xlsx", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("PK")))
}

func TestReportServiceExportRejectsJSON(t *testing.T) {
	svc := NewReportService(&statsStub{}, nil)

	_, err := svc.ExportAttendance(context.Background(), dto.AttendanceReportQuery{Format: "json"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
