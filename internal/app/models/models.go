package models

import (
	"fmt"
	"strings"
)

// RoleKind is the discriminator of Role
type RoleKind string

const (
	RoleFaculty RoleKind = "faculty"
	RoleStudent RoleKind = "student"
	RoleNone    RoleKind = "unknown"
)

// Role says which profile, if any, is linked to an identity.
// It is resolved once when a token is issued and travels inside the token.
type Role struct {
	Kind      RoleKind
	ProfileID int64
}

// FacultyRole builds the role of an identity owning faculty profile id
func FacultyRole(id int64) Role {
	return Role{Kind: RoleFaculty, ProfileID: id}
}

// StudentRole builds the role of an identity owning student profile id
func StudentRole(id int64) Role {
	return Role{Kind: RoleStudent, ProfileID: id}
}

// NoRole is the role of an identity with no linked profile
func NoRole() Role {
	return Role{Kind: RoleNone}
}

// FacultyID returns the faculty profile id when the role is Faculty
func (r Role) FacultyID() (int64, bool) {
	if r.Kind == RoleFaculty && r.ProfileID > 0 {
		return r.ProfileID, true
	}
	return 0, false
}

// StudentID returns the student profile id when the role is Student
func (r Role) StudentID() (int64, bool) {
	if r.Kind == RoleStudent && r.ProfileID > 0 {
		return r.ProfileID, true
	}
	return 0, false
}

func (r Role) String() string {
	if r.Kind == RoleNone || r.Kind == "" {
		return string(RoleNone)
	}
	return fmt.Sprintf("%s(%d)", r.Kind, r.ProfileID)
}

// Identity is the authenticated actor of a request
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// Gender of a student
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParseGender accepts a gender code (M/F/O) or its long form (male/female/other)
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale, true
	case "f", "female":
		return GenderFemale, true
	case "o", "other":
		return GenderOther, true
	}
	return "", false
}
