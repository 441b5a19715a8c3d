package models

// Room defines the room model based on the 'rooms' table
type Room struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name" example:"A1"`
	Building string `json:"building" db:"building" example:"Main"`
	Capacity int    `json:"capacity" db:"capacity" example:"120"`
}
