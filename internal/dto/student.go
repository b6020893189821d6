package dto

import "github.com/noah-isme/dance-studio-api/internal/models"

// CreateStudentRequest registers a student account and profile together.
type CreateStudentRequest struct {
	Email       string        `json:"email" validate:"required,email,max=255"`
	Password    string        `json:"password" validate:"required,min=8,max=72"`
	FullName    string        `json:"full_name" validate:"required,max=50"`
	DateOfBirth models.Date   `json:"date_of_birth"`
	Gender      models.Gender `json:"gender" validate:"required,oneof=M F"`
	Phone       string        `json:"phone" validate:"required,max=12"`
}

// UpdateStudentRequest patches a student; nil fields are left unchanged.
type UpdateStudentRequest struct {
	Email       *string        `json:"email" validate:"omitempty,email,max=255"`
	FullName    *string        `json:"full_name" validate:"omitempty,min=1,max=50"`
	DateOfBirth *models.Date   `json:"date_of_birth"`
	Gender      *models.Gender `json:"gender" validate:"omitempty,oneof=M F"`
	Phone       *string        `json:"phone" validate:"omitempty,min=1,max=12"`
}

// StudentListResponse wraps a page of students.
type StudentListResponse struct {
	Items      []models.StudentDetail `json:"items"`
	Pagination models.Pagination      `json:"pagination"`
}
