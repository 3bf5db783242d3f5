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

// StudentService defines the interface for student-related operations
type StudentService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest, picture *PictureFile) (*models.Student, error)
	GetStudentByID(ctx context.Context, actor models.Identity, id int64) (*models.Student, error)
	// GetAllStudents lists the students visible to actor
	GetAllStudents(ctx context.Context, actor models.Identity) ([]*models.Student, error)
	UpdateStudent(ctx context.Context, actor models.Identity, id int64, req *dto.UpdateStudentRequest, picture *PictureFile) (*models.Student, error)
	DeleteStudent(ctx context.Context, actor models.Identity, id int64) error

	GetDashboard(ctx context.Context, actor models.Identity, id int64) (*dto.StudentDashboardResponse, error)
	UploadProfilePic(ctx context.Context, actor models.Identity, id int64, picture *PictureFile) (*models.Student, error)
	// PictureURL returns the public path of a stored picture
	PictureURL(relPath string) string
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo repositories.IStudentRepository
	creator     *AccountCreator
	pictures    *ProfilePictureManager
	logger      zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	creator *AccountCreator,
	pictures *ProfilePictureManager,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		creator:     creator,
		pictures:    pictures,
		logger:      logger,
	}
}

// CreateStudent creates a user, its student profile and optional picture
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest, picture *PictureFile) (*models.Student, error) {
	profile, err := req.ToStudent()
	if err != nil {
		return nil, err
	}
	return s.creator.CreateStudent(ctx, req.User, profile, picture)
}

func (s *studentServiceImpl) getStudent(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return s.studentRepo.GetStudentByID(ctx, id)
}

// GetStudentByID retrieves a student with the faculties it is enrolled with
func (s *studentServiceImpl) GetStudentByID(ctx context.Context, actor models.Identity, id int64) (*models.Student, error) {
	if err := auth.RequireReadStudent(actor, id); err != nil {
		return nil, err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	faculties, err := s.studentRepo.GetFaculties(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student faculties: %w", err)
	}
	student.Faculties = faculties
	return student, nil
}

// GetAllStudents lists every student for faculty, the own record for a
// student and nothing for anyone else
func (s *studentServiceImpl) GetAllStudents(ctx context.Context, actor models.Identity) ([]*models.Student, error) {
	scope := auth.VisibleStudents(actor)
	switch {
	case scope.All:
		students, err := s.studentRepo.GetAllStudents(ctx)
		if err != nil {
			return nil, fmt.Errorf("error retrieving students: %w", err)
		}
		return students, nil
	case scope.Empty():
		return []*models.Student{}, nil
	}

	student, err := s.studentRepo.GetStudentByID(ctx, scope.StudentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return []*models.Student{}, nil
		}
		return nil, err
	}
	return []*models.Student{student}, nil
}

// UpdateStudent applies a partial update. Identity fields of the user are
// editable only by the student; profile fields and the picture also by faculty.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, actor models.Identity, id int64, req *dto.UpdateStudentRequest, picture *PictureFile) (*models.Student, error) {
	if err := auth.RequireManageStudent(actor, id); err != nil {
		return nil, err
	}
	if !req.User.IsEmpty() {
		if err := auth.RequireWriteStudent(actor, id); err != nil {
			return nil, err
		}
		if err := req.User.Validate(); err != nil {
			return nil, err
		}
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.ApplyTo(student); err != nil {
		return nil, err
	}
	if picture != nil {
		if err := s.pictures.Validate(picture); err != nil {
			return nil, err
		}
	}

	if req.User.IsEmpty() {
		student.User = nil
	} else {
		req.User.ApplyTo(student.User)
	}

	// The picture goes first: a storage failure then leaves the record untouched
	if picture != nil {
		if err := s.pictures.Replace(ctx, student, picture); err != nil {
			return nil, err
		}
	}

	if err := s.studentRepo.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}

	return s.GetStudentByID(ctx, actor, id)
}

// DeleteStudent removes the record, its user and then the stored picture
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, actor models.Identity, id int64) error {
	if err := auth.RequireManageStudent(actor, id); err != nil {
		return err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return err
	}

	if err := s.studentRepo.DeleteStudent(ctx, student.ID); err != nil {
		return err
	}
	s.pictures.Delete(ctx, student)

	s.logger.Info().Int64("studentID", student.ID).Int64("userID", student.UserID).Msg("Student deleted")
	return nil
}

// GetDashboard returns the student and the faculties it is enrolled with
func (s *studentServiceImpl) GetDashboard(ctx context.Context, actor models.Identity, id int64) (*dto.StudentDashboardResponse, error) {
	if err := auth.RequireReadStudent(actor, id); err != nil {
		return nil, err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	faculties, err := s.studentRepo.GetFaculties(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrolled courses: %w", err)
	}
	return dto.NewStudentDashboardResponse(student, faculties), nil
}

// UploadProfilePic replaces the student's picture
func (s *studentServiceImpl) UploadProfilePic(ctx context.Context, actor models.Identity, id int64, picture *PictureFile) (*models.Student, error) {
	if err := auth.RequireManageStudent(actor, id); err != nil {
		return nil, err
	}
	if picture == nil {
		return nil, apperrors.ErrPictureMissing
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.pictures.Replace(ctx, student, picture); err != nil {
		return nil, err
	}
	return student, nil
}

// PictureURL returns the public path of a stored picture
func (s *studentServiceImpl) PictureURL(relPath string) string {
	return s.pictures.URL(relPath)
}
