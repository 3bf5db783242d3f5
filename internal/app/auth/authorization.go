// Package auth decides what an authenticated identity may do. Decisions are
// made from the role carried by the identity; no storage is consulted.
package auth

import (
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

// Capability is a permission granted by the kind of profile an identity owns
type Capability string

const (
	// ViewAll lets a faculty member see every student
	ViewAll Capability = "view_all"
	// ViewSelf lets a student see their own record
	ViewSelf Capability = "view_self"
)

// Authorization errors
var (
	ErrNotFaculty       = apperrors.NewForbiddenError("only faculty members can perform this action")
	ErrNotStudentOwner  = apperrors.NewForbiddenError("you can only modify your own student record")
	ErrStudentForbidden = apperrors.NewForbiddenError("you do not have permission to access this student")
	ErrFacultyForbidden = apperrors.NewForbiddenError("you can only modify your own faculty profile")
)

// Capabilities lists what the identity's role grants. No profile, no capability.
func Capabilities(id models.Identity) []Capability {
	switch id.Role.Kind {
	case models.RoleFaculty:
		return []Capability{ViewAll}
	case models.RoleStudent:
		return []Capability{ViewSelf}
	default:
		return nil
	}
}

// Has reports whether the identity holds capability c
func Has(id models.Identity, c Capability) bool {
	for _, granted := range Capabilities(id) {
		if granted == c {
			return true
		}
	}
	return false
}

func ownsStudent(id models.Identity, studentID int64) bool {
	own, ok := id.Role.StudentID()
	return ok && Has(id, ViewSelf) && own == studentID
}

// CanReadStudent allows faculty, and the student themself
func CanReadStudent(id models.Identity, studentID int64) bool {
	return Has(id, ViewAll) || ownsStudent(id, studentID)
}

// CanWriteStudent allows only the student themself. Seeing every student
// does not imply editing them.
func CanWriteStudent(id models.Identity, studentID int64) bool {
	return ownsStudent(id, studentID)
}

// CanManageStudent covers profile edits, deletion and picture upload, which
// faculty may perform on any student.
func CanManageStudent(id models.Identity, studentID int64) bool {
	return Has(id, ViewAll) || ownsStudent(id, studentID)
}

// CanManageFaculty allows a faculty member to change only their own profile
func CanManageFaculty(id models.Identity, facultyID int64) bool {
	own, ok := id.Role.FacultyID()
	return ok && own == facultyID
}

// StudentScope describes which students an identity may list
type StudentScope struct {
	All       bool
	StudentID int64 // set when the scope is a single student
}

// Empty reports whether no student is visible
func (s StudentScope) Empty() bool {
	return !s.All && s.StudentID == 0
}

// VisibleStudents returns the listing scope of an identity
func VisibleStudents(id models.Identity) StudentScope {
	if Has(id, ViewAll) {
		return StudentScope{All: true}
	}
	if own, ok := id.Role.StudentID(); ok && Has(id, ViewSelf) {
		return StudentScope{StudentID: own}
	}
	return StudentScope{}
}

// RequireFaculty fails unless the identity owns a faculty profile
func RequireFaculty(id models.Identity) error {
	if _, ok := id.Role.FacultyID(); !ok {
		return ErrNotFaculty
	}
	return nil
}

// RequireReadStudent fails unless CanReadStudent
func RequireReadStudent(id models.Identity, studentID int64) error {
	if !CanReadStudent(id, studentID) {
		return ErrStudentForbidden
	}
	return nil
}

// RequireWriteStudent fails unless CanWriteStudent
func RequireWriteStudent(id models.Identity, studentID int64) error {
	if !CanWriteStudent(id, studentID) {
		return ErrNotStudentOwner
	}
	return nil
}

// RequireManageStudent fails unless CanManageStudent
func RequireManageStudent(id models.Identity, studentID int64) error {
	if !CanManageStudent(id, studentID) {
		return ErrStudentForbidden
	}
	return nil
}

// RequireManageFaculty fails unless CanManageFaculty
func RequireManageFaculty(id models.Identity, facultyID int64) error {
	if !CanManageFaculty(id, facultyID) {
		return ErrFacultyForbidden
	}
	return nil
}
