package models

import "time"

// MaxHallCapacity is the largest number of dancers a hall may hold.
const MaxHallCapacity = 100

// Hall is a studio room with a fixed capacity.
type Hall struct {
	ID          string    `db:"id" json:"id"`
	HallNumber  int       `db:"hall_number" json:"hall_number"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
