package dto

import "github.com/yigit/collegeapi/internal/app/models"

// CreateFacultyRequest creates a user together with its faculty profile
type CreateFacultyRequest struct {
	User          UserInput `json:"user"`
	Subject       string    `json:"subject" binding:"required,max=100" example:"Computer Science"`
	ContactNumber string    `json:"contact_number" binding:"required,max=15" example:"1234567890"`
	Address       string    `json:"address" binding:"required" example:"123 Faculty Building"`
}

// UpdateFacultyRequest updates profile fields; nil means unchanged
type UpdateFacultyRequest struct {
	User          *UserUpdateInput `json:"user,omitempty"`
	Subject       *string          `json:"subject,omitempty" binding:"omitempty,max=100"`
	ContactNumber *string          `json:"contact_number,omitempty" binding:"omitempty,max=15"`
	Address       *string          `json:"address,omitempty"`
}

// ApplyTo copies the set fields onto f
func (r *UpdateFacultyRequest) ApplyTo(f *models.Faculty) {
	if r.Subject != nil {
		f.Subject = *r.Subject
	}
	if r.ContactNumber != nil {
		f.ContactNumber = *r.ContactNumber
	}
	if r.Address != nil {
		f.Address = *r.Address
	}
}

// AddStudentRequest enrolls a student with a faculty
type AddStudentRequest struct {
	StudentID int64 `json:"student_id" binding:"required,gt=0" example:"3"`
}

// FacultyResponse represents a faculty profile
type FacultyResponse struct {
	ID            int64         `json:"id" example:"1"`
	User          *UserResponse `json:"user"`
	Subject       string        `json:"subject" example:"Computer Science"`
	ContactNumber string        `json:"contact_number" example:"1234567890"`
	Address       string        `json:"address" example:"123 Faculty Building"`
}

// NewFacultyResponse maps a faculty profile
func NewFacultyResponse(f *models.Faculty) *FacultyResponse {
	if f == nil {
		return nil
	}
	return &FacultyResponse{
		ID:            f.ID,
		User:          NewUserResponse(f.User),
		Subject:       f.Subject,
		ContactNumber: f.ContactNumber,
		Address:       f.Address,
	}
}

// NewFacultyListResponse maps a list of faculty profiles
func NewFacultyListResponse(faculties []*models.Faculty) []*FacultyResponse {
	out := make([]*FacultyResponse, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, NewFacultyResponse(f))
	}
	return out
}

// FacultyInfo is the header block of the faculty dashboard
type FacultyInfo struct {
	Name    string `json:"name" example:"John Doe"`
	Subject string `json:"subject" example:"Computer Science"`
	Email   string `json:"email" example:"faculty1@example.com"`
	Contact string `json:"contact" example:"1234567890"`
}

// AssignedStudent is one row of the faculty dashboard
type AssignedStudent struct {
	ID         int64  `json:"id" example:"3"`
	Name       string `json:"name" example:"Jane Roe"`
	Email      string `json:"email" example:"jane@example.com"`
	Contact    string `json:"contact" example:"5551234567"`
	BloodGroup string `json:"blood_group" example:"O+"`
}

// FacultyDashboardResponse is the faculty dashboard
type FacultyDashboardResponse struct {
	FacultyInfo      FacultyInfo       `json:"faculty_info"`
	AssignedStudents []AssignedStudent `json:"assigned_students"`
}

// NewFacultyDashboardResponse builds the dashboard from a faculty and its students
func NewFacultyDashboardResponse(f *models.Faculty, students []*models.Student) *FacultyDashboardResponse {
	resp := &FacultyDashboardResponse{
		FacultyInfo: FacultyInfo{
			Name:    f.User.FullName(),
			Subject: f.Subject,
			Contact: f.ContactNumber,
		},
		AssignedStudents: make([]AssignedStudent, 0, len(students)),
	}
	if f.User != nil {
		resp.FacultyInfo.Email = f.User.Email
	}

	for _, s := range students {
		row := AssignedStudent{
			ID:         s.ID,
			Name:       s.User.FullName(),
			Contact:    s.ContactNumber,
			BloodGroup: s.BloodGroup,
		}
		if s.User != nil {
			row.Email = s.User.Email
		}
		resp.AssignedStudents = append(resp.AssignedStudents, row)
	}
	return resp
}
