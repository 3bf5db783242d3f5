package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/repositories"
	"github.com/yigit/collegeapi/internal/pkg/auth"
	"github.com/yigit/collegeapi/internal/pkg/saga"
)

// AccountCreator creates a user and its linked profile as one unit. The
// steps touch the record store and the media store, so they run as a saga:
// a failing step undoes the ones before it.
type AccountCreator struct {
	users     repositories.IUserRepository
	faculties repositories.IFacultyRepository
	students  repositories.IStudentRepository
	pictures  *ProfilePictureManager
	hash      auth.PasswordHasher
	logger    zerolog.Logger
}

// NewAccountCreator creates a new AccountCreator. A nil hasher means auth.HashPassword.
func NewAccountCreator(
	users repositories.IUserRepository,
	faculties repositories.IFacultyRepository,
	students repositories.IStudentRepository,
	pictures *ProfilePictureManager,
	hash auth.PasswordHasher,
	logger zerolog.Logger,
) *AccountCreator {
	if hash == nil {
		hash = auth.HashPassword
	}
	return &AccountCreator{
		users:     users,
		faculties: faculties,
		students:  students,
		pictures:  pictures,
		hash:      hash,
		logger:    logger,
	}
}

// newUser validates the payload and returns an unsaved user with a hashed password
func (c *AccountCreator) newUser(input dto.UserInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hashed, err := c.hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	return &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}, nil
}

// createUserStep inserts the user. Its compensation deletes it again, which
// also removes any profile row through the cascade.
func (c *AccountCreator) createUserStep(user *models.User) (saga.ActionFn, saga.ActionFn) {
	do := func(ctx context.Context) error {
		_, err := c.users.CreateUser(ctx, user)
		return err
	}
	undo := func(ctx context.Context) error {
		if err := c.users.DeleteUser(ctx, user.ID); err != nil {
			return fmt.Errorf("rollback failed for user %d (%s): %w", user.ID, user.Username, err)
		}
		return nil
	}
	return do, undo
}

// CreateFaculty creates a user and its faculty profile. profile carries the
// faculty fields; on success it is filled with the new ids and user.
func (c *AccountCreator) CreateFaculty(ctx context.Context, input dto.UserInput, profile *models.Faculty) (*models.Faculty, error) {
	user, err := c.newUser(input)
	if err != nil {
		return nil, err
	}

	createUser, deleteUser := c.createUserStep(user)
	err = saga.New("create_faculty", c.logger).
		AddStep("create_user", createUser, deleteUser).
		AddStep("create_faculty_profile", func(ctx context.Context) error {
			profile.UserID = user.ID
			_, err := c.faculties.CreateFaculty(ctx, profile)
			return err
		}, nil).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	profile.User = user
	c.logger.Info().Int64("userID", user.ID).Int64("facultyID", profile.ID).Str("username", user.Username).Msg("Faculty account created")
	return profile, nil
}

// CreateStudent creates a user, its student profile and, when picture is not
// nil, the stored profile picture. A picture that fails validation is
// rejected before anything is written.
func (c *AccountCreator) CreateStudent(ctx context.Context, input dto.UserInput, profile *models.Student, picture *PictureFile) (*models.Student, error) {
	user, err := c.newUser(input)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		if err := c.pictures.Validate(picture); err != nil {
			return nil, err
		}
	}

	profile.ProfilePic = nil
	createUser, deleteUser := c.createUserStep(user)
	s := saga.New("create_student", c.logger).
		AddStep("create_user", createUser, deleteUser).
		AddStep("create_student_profile", func(ctx context.Context) error {
			profile.UserID = user.ID
			_, err := c.students.CreateStudent(ctx, profile)
			return err
		}, nil)

	if picture != nil {
		s.AddStep("store_profile_picture", func(ctx context.Context) error {
			return c.pictures.Replace(ctx, profile, picture)
		}, nil)
	}

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	profile.User = user
	c.logger.Info().Int64("userID", user.ID).Int64("studentID", profile.ID).Str("username", user.Username).Msg("Student account created")
	return profile, nil
}
