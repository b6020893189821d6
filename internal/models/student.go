package models

import "time"

// Gender of a student.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// EarliestBirthDate bounds student dates of birth from below.
var EarliestBirthDate = NewDate(1900, time.January, 1)

// Student extends a User with the dancer's profile.
type Student struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	DateOfBirth Date      `db:"date_of_birth" json:"date_of_birth"`
	Gender      Gender    `db:"gender" json:"gender"`
	Phone       string    `db:"phone" json:"phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student with the account email.
type StudentDetail struct {
	Student
	Email string `db:"email" json:"email"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
