package dto

// CreateTeacherRequest registers a teacher account and profile together.
type CreateTeacherRequest struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	FullName       string `json:"full_name" validate:"required,max=50"`
	Experience     int    `json:"experience" validate:"gte=0,lte=50"`
	Specialization string `json:"specialization" validate:"required,max=20"`
	Phone          string `json:"phone" validate:"required,max=12"`
}

// UpdateTeacherRequest patches a teacher profile.
type UpdateTeacherRequest struct {
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	FullName       *string `json:"full_name" validate:"omitempty,min=1,max=50"`
	Experience     *int    `json:"experience" validate:"omitempty,gte=0,lte=50"`
	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=20"`
	Phone          *string `json:"phone" validate:"omitempty,min=1,max=12"`
}
