package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Username  string    `json:"username" db:"username" example:"faculty1"`
	Email     string    `json:"email" db:"email" example:"faculty1@example.com"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, never serialized
	FirstName string    `json:"first_name" db:"first_name" example:"John"`
	LastName  string    `json:"last_name" db:"last_name" example:"Doe"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name the way dashboards display it
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
