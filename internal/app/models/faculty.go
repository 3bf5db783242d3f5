package models

// Faculty is a teaching profile linked one-to-one with a User
type Faculty struct {
	ID            int64  `json:"id" db:"id" example:"1"`
	UserID        int64  `json:"user_id" db:"user_id" example:"1"`
	Subject       string `json:"subject" db:"subject" example:"Computer Science"`
	ContactNumber string `json:"contact_number" db:"contact_number" example:"1234567890"`
	Address       string `json:"address" db:"address" example:"123 Faculty Building"`

	// Relations (populated when needed)
	User *User `json:"user,omitempty"`
}
