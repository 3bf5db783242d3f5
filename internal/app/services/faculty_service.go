package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/collegeapi/internal/app/auth"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/repositories"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

// FacultyService defines the interface for faculty-related operations
type FacultyService interface {
	CreateFaculty(ctx context.Context, req *dto.CreateFacultyRequest) (*models.Faculty, error)
	GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetAllFaculties(ctx context.Context) ([]*models.Faculty, error)
	UpdateFaculty(ctx context.Context, actor models.Identity, id int64, req *dto.UpdateFacultyRequest) (*models.Faculty, error)
	DeleteFaculty(ctx context.Context, actor models.Identity, id int64) error

	GetDashboard(ctx context.Context, id int64) (*dto.FacultyDashboardResponse, error)
	// AddStudent enrolls a student and returns the confirmation message
	AddStudent(ctx context.Context, actor models.Identity, facultyID, studentID int64) (string, error)
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	facultyRepo repositories.IFacultyRepository
	studentRepo repositories.IStudentRepository
	creator     *AccountCreator
	logger      zerolog.Logger
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(
	facultyRepo repositories.IFacultyRepository,
	studentRepo repositories.IStudentRepository,
	creator *AccountCreator,
	logger zerolog.Logger,
) FacultyService {
	return &facultyServiceImpl{
		facultyRepo: facultyRepo,
		studentRepo: studentRepo,
		creator:     creator,
		logger:      logger,
	}
}

// CreateFaculty creates a user and its faculty profile
func (s *facultyServiceImpl) CreateFaculty(ctx context.Context, req *dto.CreateFacultyRequest) (*models.Faculty, error) {
	profile := &models.Faculty{
		Subject:       req.Subject,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	}
	return s.creator.CreateFaculty(ctx, req.User, profile)
}

// GetFacultyByID retrieves a faculty by ID
func (s *facultyServiceImpl) GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error) {
	if id <= 0 {
		return nil, apperrors.ErrFacultyNotFound
	}
	return s.facultyRepo.GetFacultyByID(ctx, id)
}

// GetAllFaculties retrieves all faculties
func (s *facultyServiceImpl) GetAllFaculties(ctx context.Context) ([]*models.Faculty, error) {
	faculties, err := s.facultyRepo.GetAllFaculties(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving faculties: %w", err)
	}
	return faculties, nil
}

// UpdateFaculty applies a partial update. Only the faculty itself may edit its profile.
func (s *facultyServiceImpl) UpdateFaculty(ctx context.Context, actor models.Identity, id int64, req *dto.UpdateFacultyRequest) (*models.Faculty, error) {
	faculty, err := s.GetFacultyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireManageFaculty(actor, faculty.ID); err != nil {
		return nil, err
	}

	if req.User != nil {
		if err := req.User.Validate(); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(faculty)
	if req.User.IsEmpty() {
		faculty.User = nil
	} else {
		req.User.ApplyTo(faculty.User)
	}

	if err := s.facultyRepo.UpdateFaculty(ctx, faculty); err != nil {
		return nil, err
	}
	return s.facultyRepo.GetFacultyByID(ctx, id)
}

// DeleteFaculty removes the faculty profile and its user
func (s *facultyServiceImpl) DeleteFaculty(ctx context.Context, actor models.Identity, id int64) error {
	faculty, err := s.GetFacultyByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireManageFaculty(actor, faculty.ID); err != nil {
		return err
	}

	if err := s.facultyRepo.DeleteFaculty(ctx, faculty.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("facultyID", faculty.ID).Int64("userID", faculty.UserID).Msg("Faculty deleted")
	return nil
}

// GetDashboard returns the faculty and the students enrolled with it
func (s *facultyServiceImpl) GetDashboard(ctx context.Context, id int64) (*dto.FacultyDashboardResponse, error) {
	faculty, err := s.GetFacultyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	students, err := s.facultyRepo.GetStudents(ctx, faculty.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assigned students: %w", err)
	}
	return dto.NewFacultyDashboardResponse(faculty, students), nil
}

// AddStudent enrolls a student with a faculty. Enrolling twice is a no-op.
// Only the faculty itself may enroll students into its class.
func (s *facultyServiceImpl) AddStudent(ctx context.Context, actor models.Identity, facultyID, studentID int64) (string, error) {
	if err := auth.RequireFaculty(actor); err != nil {
		return "", err
	}

	faculty, err := s.GetFacultyByID(ctx, facultyID)
	if err != nil {
		return "", err
	}
	if err := auth.RequireManageFaculty(actor, faculty.ID); err != nil {
		return "", err
	}

	if studentID <= 0 {
		return "", apperrors.ErrStudentNotFound
	}
	student, err := s.studentRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return "", err
	}

	if err := s.facultyRepo.AddStudent(ctx, faculty.ID, student.ID); err != nil {
		return "", err
	}

	s.logger.Info().Int64("facultyID", faculty.ID).Int64("studentID", student.ID).Msg("Student enrolled")
	return fmt.Sprintf("Student %s added to %s class", student.User.Username, faculty.Subject), nil
}
