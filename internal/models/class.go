package models

import "time"

// Class is one scheduled session in a hall led by a teacher.
type Class struct {
	ID              string    `db:"id" json:"id"`
	ClassDate       Date      `db:"class_date" json:"date"`
	StartTime       ClockTime `db:"start_time" json:"time"`
	DanceType       string    `db:"dance_type" json:"type"`
	HallID          string    `db:"hall_id" json:"hall_id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	CurrentCapacity int       `db:"current_capacity" json:"current_capacity"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasRoom reports whether one more dancer fits into a hall of the given capacity.
func (c Class) HasRoom(hallCapacity int) bool {
	return c.CurrentCapacity < hallCapacity
}

// ClassDetail is the schedule view joined with hall and teacher data.
type ClassDetail struct {
	Class
	HallNumber     int    `db:"hall_number" json:"hall_number"`
	HallCapacity   int    `db:"hall_capacity" json:"hall_capacity"`
	TeacherName    string `db:"teacher_name" json:"teacher_name"`
	Specialization string `db:"specialization" json:"specialization"`
	RemainingSlots int    `db:"remaining_slots" json:"remaining_slots"`
	DayOfWeek      string `db:"-" json:"day_of_week"`
}

// ClassFilter narrows the schedule listing.
type ClassFilter struct {
	StartDate Date
	EndDate   Date
	DanceType string
	TeacherID string
	// ExcludeStudentID hides classes the student is already enrolled in.
	ExcludeStudentID string
	OnlyWithRoom     bool
}
