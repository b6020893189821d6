package models

import "time"

// Teacher extends a User with the instructor's profile.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Experience     int       `db:"experience" json:"experience"`
	Specialization string    `db:"specialization" json:"specialization"`
	Phone          string    `db:"phone" json:"phone"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail joins the teacher with the account email.
type TeacherDetail struct {
	Teacher
	Email string `db:"email" json:"email"`
}
