package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/validation"
)

// UserInput is the nested "user" payload of faculty and student creation.
// It decodes from either a JSON object or a JSON string holding that object,
// since multipart clients can only send the latter.
type UserInput struct {
	Username  string `json:"username" validate:"required,min=4,max=150,username" example:"jane.roe"`
	Password  string `json:"password" validate:"required,max=128,password" example:"Secret@123"`
	FirstName string `json:"first_name" validate:"max=150" example:"Jane"`
	LastName  string `json:"last_name" validate:"max=150" example:"Roe"`
	Email     string `json:"email" validate:"omitempty,email,max=254" example:"jane@example.com"`
}

// UnmarshalJSON implements json.Unmarshaler
func (u *UserInput) UnmarshalJSON(data []byte) error {
	type plain UserInput
	var decoded plain
	if err := decodeObjectOrString(data, &decoded); err != nil {
		return err
	}
	*u = UserInput(decoded)
	return nil
}

// Validate checks the payload against the username and password rules
func (u *UserInput) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if err := validation.Struct(u); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// ParseUserInput decodes the "user" form field of a multipart request
func ParseUserInput(raw string) (UserInput, error) {
	var input UserInput
	if strings.TrimSpace(raw) == "" {
		return input, apperrors.ErrUserDataRequired
	}
	if err := input.UnmarshalJSON([]byte(raw)); err != nil {
		return input, err
	}
	return input, nil
}

// UserUpdateInput carries the editable identity fields; nil means unchanged
type UserUpdateInput struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

// UnmarshalJSON implements json.Unmarshaler
func (u *UserUpdateInput) UnmarshalJSON(data []byte) error {
	type plain UserUpdateInput
	var decoded plain
	if err := decodeObjectOrString(data, &decoded); err != nil {
		return err
	}
	*u = UserUpdateInput(decoded)
	return nil
}

// Validate checks the update fields
func (u *UserUpdateInput) Validate() error {
	if err := validation.Struct(u); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// IsEmpty reports whether no field is being changed
func (u *UserUpdateInput) IsEmpty() bool {
	return u == nil || (u.FirstName == nil && u.LastName == nil && u.Email == nil)
}

// ApplyTo copies the set fields onto user
func (u *UserUpdateInput) ApplyTo(user *models.User) {
	if u == nil || user == nil {
		return
	}
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Email != nil {
		user.Email = strings.TrimSpace(*u.Email)
	}
}

// decodeObjectOrString unmarshals data into v, unwrapping one level of
// string encoding first. Anything that is not an object ends up as
// ErrMalformedUserData.
func decodeObjectOrString(data []byte, v interface{}) error {
	payload := bytes.TrimSpace(data)
	if bytes.Equal(payload, []byte("null")) {
		return nil
	}

	if len(payload) > 0 && payload[0] == '"' {
		var encoded string
		if err := json.Unmarshal(payload, &encoded); err != nil {
			return apperrors.ErrMalformedUserData
		}
		payload = bytes.TrimSpace([]byte(encoded))
	}

	if len(payload) == 0 || payload[0] != '{' {
		return apperrors.ErrMalformedUserData
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return apperrors.ErrMalformedUserData
	}
	return nil
}

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64  `json:"id" example:"1"`
	Username  string `json:"username" example:"faculty1"`
	Email     string `json:"email" example:"faculty1@example.com"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`
}

// NewUserResponse maps a user; nil stays nil
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
