package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
	"github.com/noah-isme/dance-studio-api/pkg/export"
)

// Report output formats.
const (
	ReportFormatJSON = "json"
	ReportFormatCSV  = "csv"
	ReportFormatPDF  = "pdf"
	ReportFormatXLSX = "xlsx"
)

type attendanceStatsReader interface {
	Stats(ctx context.Context, filter models.AttendanceStatsFilter) ([]models.AttendanceStatRow, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ReportFile is a rendered report ready to be downloaded.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService aggregates attendance statistics.
type ReportService struct {
	repo      attendanceStatsReader
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewReportService constructs ReportService with CSV, PDF and XLSX renderers.
func NewReportService(repo attendanceStatsReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo: repo,
		renderers: map[string]datasetRenderer{
			ReportFormatCSV:  export.NewCSVExporter(),
			ReportFormatPDF:  export.NewPDFExporter(),
			ReportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

// AttendanceStats totals attendance rows in the filtered window.
func (s *ReportService) AttendanceStats(ctx context.Context, query dto.AttendanceReportQuery) (*models.AttendanceStats, error) {
	filter, err := parseStatsFilter(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Stats(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance statistics")
	}
	return aggregateStats(rows), nil
}

// Format normalises the requested report format, defaulting to JSON.
func (s *ReportService) Format(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" || format == ReportFormatJSON {
		return ReportFormatJSON, nil
	}
	if _, ok := s.renderers[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be json, csv, pdf or xlsx")
	}
	return format, nil
}

// ExportAttendance renders the statistics as a downloadable file.
func (s *ReportService) ExportAttendance(ctx context.Context, query dto.AttendanceReportQuery) (*ReportFile, error) {
	format, err := s.Format(query.Format)
	if err != nil {
		return nil, err
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx for downloads")
	}
	stats, err := s.AttendanceStats(ctx, query)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(statsDataset(stats))
	if err != nil {
		s.logger.Error("failed to render attendance report", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ReportFile{
		Filename:    "attendance-report." + format,
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func parseStatsFilter(query dto.AttendanceReportQuery) (models.AttendanceStatsFilter, error) {
	filter := models.AttendanceStatsFilter{
		DanceType: strings.TrimSpace(query.DanceType),
		TeacherID: strings.TrimSpace(query.TeacherID),
	}
	if query.DateFrom != "" {
		from, err := models.ParseDate(query.DateFrom)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := models.ParseDate(query.DateTo)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must not be before date_from")
	}
	return filter, nil
}

func aggregateStats(rows []models.AttendanceStatRow) *models.AttendanceStats {
	stats := &models.AttendanceStats{
		ByDanceType: map[string]int{},
		ByTeacher:   map[string]int{},
		ByDate:      map[string]int{},
	}
	for _, row := range rows {
		stats.TotalAttendance += row.Total
		stats.ByDanceType[row.DanceType] += row.Total
		stats.ByTeacher[row.TeacherID] += row.Total
		stats.ByDate[row.ClassDate.String()] += row.Total
		if row.Presence == models.PresencePresent {
			stats.Present += row.Total
		}
	}
	if stats.TotalAttendance > 0 {
		rate := float64(stats.Present) / float64(stats.TotalAttendance) * 100
		stats.AttendanceRate = math.Round(rate*100) / 100
	}
	return stats
}

func statsDataset(stats *models.AttendanceStats) export.Dataset {
	data := export.Dataset{Title: "Attendance report", Headers: []string{"group", "key", "count"}}
	data.AddRow("summary", "total_attendance", strconv.Itoa(stats.TotalAttendance))
	data.AddRow("summary", "present", strconv.Itoa(stats.Present))
	data.AddRow("summary", "attendance_rate", fmt.Sprintf("%.2f", stats.AttendanceRate))
	addGroup(&data, "dance_type", stats.ByDanceType)
	addGroup(&data, "teacher", stats.ByTeacher)
	addGroup(&data, "date", stats.ByDate)
	return data
}

func addGroup(data *export.Dataset, group string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data.AddRow(group, key, strconv.Itoa(counts[key]))
	}
}
