package models

import "time"

// Student is a student profile linked one-to-one with a User
type Student struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	UserID        int64     `json:"user_id" db:"user_id" example:"5"`
	DateOfBirth   time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender        Gender    `json:"gender" db:"gender" example:"F"`
	BloodGroup    string    `json:"blood_group" db:"blood_group" example:"O+"`
	ContactNumber string    `json:"contact_number" db:"contact_number" example:"5551234567"`
	Address       string    `json:"address" db:"address"`
	ProfilePic    *string   `json:"profile_pic,omitempty" db:"profile_pic" example:"profile_pics/profile_pic_5.png"` // relative media path, nullable

	// Relations (populated when needed)
	User      *User      `json:"user,omitempty"`
	Faculties []*Faculty `json:"faculties,omitempty"`
}

// HasProfilePic reports whether the record references a stored picture
func (s *Student) HasProfilePic() bool {
	return s != nil && s.ProfilePic != nil && *s.ProfilePic != ""
}
