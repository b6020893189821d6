package dto

// AttendanceReportQuery captures the attendance statistics filters.
type AttendanceReportQuery struct {
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	DanceType string `form:"dance_type"`
	TeacherID string `form:"teacher_id"`
	Format    string `form:"format"`
}
