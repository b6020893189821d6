package models

import (
	"errors"
	"strings"
	"time"
)

// Presence is the attendance state of a student for one class.
type Presence string

const (
	PresenceRegistered Presence = "Registered"
	PresencePresent    Presence = "Present"
)

// ErrPresenceReversal is returned when a Present mark would be undone.
var ErrPresenceReversal = errors.New("attendance already marked present")

// ErrUnknownPresence is returned for unrecognised presence labels.
var ErrUnknownPresence = errors.New("unknown presence value")

var presenceAliases = map[string]Presence{
	"registered":    PresenceRegistered,
	"записан":       PresenceRegistered,
	"present":       PresencePresent,
	"присутствовал": PresencePresent,
}

// ParsePresence accepts the English labels and the studio's legacy labels.
func ParsePresence(raw string) (Presence, error) {
	if p, ok := presenceAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p, nil
	}
	return "", ErrUnknownPresence
}

// PresenceTransition describes the effect of moving between presence states.
type PresenceTransition struct {
	From Presence
	To   Presence
	// ConsumesClass is set when the move must be paid for from a subscription.
	ConsumesClass bool
	NoOp          bool
}

// Transition validates a move from p to next. Registered → Present is the
// only state change; repeating the current state is a no-op.
func (p Presence) Transition(next Presence) (PresenceTransition, error) {
	t := PresenceTransition{From: p, To: next}
	switch {
	case p == next:
		t.NoOp = true
		return t, nil
	case p == PresenceRegistered && next == PresencePresent:
		t.ConsumesClass = true
		return t, nil
	case p == PresencePresent && next == PresenceRegistered:
		return t, ErrPresenceReversal
	default:
		return t, ErrUnknownPresence
	}
}

// Attendance is a student's registration for one class.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Presence  Presence  `db:"presence" json:"presence"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceDetail adds class and student context for listings.
type AttendanceDetail struct {
	Attendance
	ClassDate   Date      `db:"class_date" json:"class_date"`
	StartTime   ClockTime `db:"start_time" json:"class_time"`
	DanceType   string    `db:"dance_type" json:"dance_type"`
	StudentName string    `db:"student_name" json:"student_name"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
}

// AttendanceStatsFilter narrows attendance statistics.
type AttendanceStatsFilter struct {
	DateFrom  *Date
	DateTo    *Date
	DanceType string
	TeacherID string
}

// AttendanceStatRow is one aggregated bucket read from the store.
type AttendanceStatRow struct {
	ClassDate Date     `db:"class_date"`
	DanceType string   `db:"dance_type"`
	TeacherID string   `db:"teacher_id"`
	Presence  Presence `db:"presence"`
	Total     int      `db:"total"`
}

// AttendanceStats summarises attendance over a window.
type AttendanceStats struct {
	TotalAttendance int            `json:"total_attendance"`
	Present         int            `json:"present"`
	ByDanceType     map[string]int `json:"by_dance_type"`
	ByTeacher       map[string]int `json:"by_teacher"`
	ByDate          map[string]int `json:"by_date"`
	AttendanceRate  float64        `json:"attendance_rate"`
}
