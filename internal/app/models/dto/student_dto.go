package dto

import (
	"strings"
	"time"

	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

// DateLayout is the wire format of date_of_birth
const DateLayout = "2006-01-02"

// StudentFieldsRequest holds the profile fields of a new student.
// The same struct binds from JSON and from multipart form fields.
type StudentFieldsRequest struct {
	DateOfBirth   string `json:"date_of_birth" form:"date_of_birth" binding:"required" example:"2004-05-17"`
	Gender        string `json:"gender" form:"gender" binding:"required" example:"F" enums:"M,F,O"`
	BloodGroup    string `json:"blood_group" form:"blood_group" binding:"required,max=5" example:"O+"`
	ContactNumber string `json:"contact_number" form:"contact_number" binding:"required,max=15" example:"5551234567"`
	Address       string `json:"address" form:"address" binding:"required" example:"42 Campus Road"`
}

// ToStudent parses the fields into an unsaved student
func (r StudentFieldsRequest) ToStudent() (*models.Student, error) {
	dob, err := parseDate(r.DateOfBirth)
	if err != nil {
		return nil, err
	}
	gender, ok := models.ParseGender(r.Gender)
	if !ok {
		return nil, apperrors.NewValidationError("gender must be one of: M F O")
	}
	return &models.Student{
		DateOfBirth:   dob,
		Gender:        gender,
		BloodGroup:    strings.TrimSpace(r.BloodGroup),
		ContactNumber: strings.TrimSpace(r.ContactNumber),
		Address:       r.Address,
	}, nil
}

// CreateStudentRequest creates a user together with its student profile
type CreateStudentRequest struct {
	User UserInput `json:"user" form:"-"`
	StudentFieldsRequest
}

// UpdateStudentRequest updates profile fields; nil means unchanged
type UpdateStudentRequest struct {
	User          *UserUpdateInput `json:"user,omitempty" form:"-"`
	DateOfBirth   *string          `json:"date_of_birth,omitempty" form:"date_of_birth"`
	Gender        *string          `json:"gender,omitempty" form:"gender"`
	BloodGroup    *string          `json:"blood_group,omitempty" form:"blood_group" binding:"omitempty,max=5"`
	ContactNumber *string          `json:"contact_number,omitempty" form:"contact_number" binding:"omitempty,max=15"`
	Address       *string          `json:"address,omitempty" form:"address"`
}

// ApplyTo copies the set fields onto s
func (r *UpdateStudentRequest) ApplyTo(s *models.Student) error {
	if r.DateOfBirth != nil {
		dob, err := parseDate(*r.DateOfBirth)
		if err != nil {
			return err
		}
		s.DateOfBirth = dob
	}
	if r.Gender != nil {
		gender, ok := models.ParseGender(*r.Gender)
		if !ok {
			return apperrors.NewValidationError("gender must be one of: M F O")
		}
		s.Gender = gender
	}
	if r.BloodGroup != nil {
		s.BloodGroup = strings.TrimSpace(*r.BloodGroup)
	}
	if r.ContactNumber != nil {
		s.ContactNumber = strings.TrimSpace(*r.ContactNumber)
	}
	if r.Address != nil {
		s.Address = *r.Address
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date_of_birth must use the YYYY-MM-DD format")
	}
	return t, nil
}

// StudentResponse represents a student profile
type StudentResponse struct {
	ID            int64              `json:"id" example:"3"`
	User          *UserResponse      `json:"user"`
	DateOfBirth   string             `json:"date_of_birth" example:"2004-05-17"`
	Gender        string             `json:"gender" example:"F"`
	BloodGroup    string             `json:"blood_group" example:"O+"`
	ContactNumber string             `json:"contact_number" example:"5551234567"`
	Address       string             `json:"address" example:"42 Campus Road"`
	ProfilePic    *string            `json:"profile_pic" example:"profile_pics/profile_pic_5.png"`
	ProfilePicURL *string            `json:"profile_pic_url" example:"http://localhost:8080/media/profile_pics/profile_pic_5.png"`
	Faculties     []*FacultyResponse `json:"faculties"`
}

// URLResolver turns a relative media path into a public URL
type URLResolver func(relPath string) string

// NewStudentResponse maps a student; the picture URL is left nil when resolve is nil
func NewStudentResponse(s *models.Student, resolve URLResolver) *StudentResponse {
	if s == nil {
		return nil
	}
	resp := &StudentResponse{
		ID:            s.ID,
		User:          NewUserResponse(s.User),
		DateOfBirth:   s.DateOfBirth.Format(DateLayout),
		Gender:        string(s.Gender),
		BloodGroup:    s.BloodGroup,
		ContactNumber: s.ContactNumber,
		Address:       s.Address,
		Faculties:     NewFacultyListResponse(s.Faculties),
	}
	if s.HasProfilePic() {
		path := *s.ProfilePic
		resp.ProfilePic = &path
		if resolve != nil {
			url := resolve(path)
			resp.ProfilePicURL = &url
		}
	}
	return resp
}

// NewStudentListResponse maps a list of students
func NewStudentListResponse(students []*models.Student, resolve URLResolver) []*StudentResponse {
	out := make([]*StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s, resolve))
	}
	return out
}

// StudentInfo is the header block of the student dashboard
type StudentInfo struct {
	Name    string `json:"name" example:"Jane Roe"`
	Email   string `json:"email" example:"jane@example.com"`
	Contact string `json:"contact" example:"5551234567"`
}

// EnrolledCourse is one row of the student dashboard
type EnrolledCourse struct {
	ID      int64  `json:"id" example:"1"`
	Name    string `json:"name" example:"John Doe"`
	Subject string `json:"subject" example:"Computer Science"`
	Contact string `json:"contact" example:"1234567890"`
	Email   string `json:"email" example:"faculty1@example.com"`
}

// StudentDashboardResponse is the student dashboard
type StudentDashboardResponse struct {
	StudentInfo     StudentInfo      `json:"student_info"`
	EnrolledCourses []EnrolledCourse `json:"enrolled_courses"`
}

// NewStudentDashboardResponse builds the dashboard from a student and its faculties
func NewStudentDashboardResponse(s *models.Student, faculties []*models.Faculty) *StudentDashboardResponse {
	resp := &StudentDashboardResponse{
		StudentInfo: StudentInfo{
			Name:    s.User.FullName(),
			Contact: s.ContactNumber,
		},
		EnrolledCourses: make([]EnrolledCourse, 0, len(faculties)),
	}
	if s.User != nil {
		resp.StudentInfo.Email = s.User.Email
	}

	for _, f := range faculties {
		row := EnrolledCourse{
			ID:      f.ID,
			Name:    f.User.FullName(),
			Subject: f.Subject,
			Contact: f.ContactNumber,
		}
		if f.User != nil {
			row.Email = f.User.Email
		}
		resp.EnrolledCourses = append(resp.EnrolledCourses, row)
	}
	return resp
}

// UploadProfilePicResponse is returned after a successful upload
type UploadProfilePicResponse struct {
	Status        string `json:"status" example:"success"`
	Message       string `json:"message" example:"Profile picture updated successfully"`
	ProfilePic    string `json:"profile_pic" example:"profile_pics/profile_pic_5.png"`
	ProfilePicURL string `json:"profile_pic_url" example:"http://localhost:8080/media/profile_pics/profile_pic_5.png"`
}
