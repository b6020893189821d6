package dto

// CreateHallRequest adds a studio hall.
type CreateHallRequest struct {
	HallNumber  int    `json:"hall_number" validate:"required,gt=0"`
	Capacity    int    `json:"capacity" validate:"required,gt=0,lte=100"`
	Description string `json:"description" validate:"max=200"`
}

// UpdateHallRequest patches a hall.
type UpdateHallRequest struct {
	HallNumber  *int    `json:"hall_number" validate:"omitempty,gt=0"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gt=0,lte=100"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}
