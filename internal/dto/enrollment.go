package dto

// EnrollRequest lets an admin enroll a named student. Students enroll themselves
// and leave it empty.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"omitempty,uuid"`
}

// MarkAttendanceRequest sets the presence of an attendance row.
type MarkAttendanceRequest struct {
	Presence string `json:"presence" validate:"required"`
}
