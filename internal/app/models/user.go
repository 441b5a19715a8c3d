package models

import "time"

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"j.kowalski@univ.edu.pl"`
	Password  string    `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName string    `json:"firstName" db:"first_name" example:"Jan"`
	LastName  string    `json:"lastName" db:"last_name" example:"Kowalski"`
	RoleType  RoleType  `json:"roleType" db:"role_type" example:"LECTURER"`
	IsActive  bool      `json:"isActive" db:"is_active" example:"true"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
