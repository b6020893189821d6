package dto

import "github.com/noah-isme/dance-studio-api/internal/models"

// CreateClassRequest schedules a class.
type CreateClassRequest struct {
	Date      models.Date      `json:"date"`
	Time      models.ClockTime `json:"time"`
	Type      string           `json:"type" validate:"required,max=18"`
	HallID    string           `json:"hall_id" validate:"required,uuid"`
	TeacherID string           `json:"teacher_id" validate:"required,uuid"`
}

// UpdateClassRequest patches a class; nil fields are left unchanged.
type UpdateClassRequest struct {
	Date      *models.Date      `json:"date"`
	Time      *models.ClockTime `json:"time"`
	Type      *string           `json:"type" validate:"omitempty,min=1,max=18"`
	HallID    *string           `json:"hall_id" validate:"omitempty,uuid"`
	TeacherID *string           `json:"teacher_id" validate:"omitempty,uuid"`
}

// ClassListQuery captures the schedule window query string.
type ClassListQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	DanceType string `form:"dance_type"`
	TeacherID string `form:"teacher_id"`
}
