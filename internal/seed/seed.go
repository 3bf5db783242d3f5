package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	appRepos "github.com/yigit/collegeapi/internal/app/repositories"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

// FacultyAccount describes the default faculty created on first start
type FacultyAccount struct {
	Username      string
	Password      string
	Email         string
	FirstName     string
	LastName      string
	Subject       string
	ContactNumber string
	Address       string
}

// FacultyCreator creates a user together with its faculty profile
type FacultyCreator interface {
	CreateFaculty(ctx context.Context, input dto.UserInput, profile *appModels.Faculty) (*appModels.Faculty, error)
}

// CreateDefaultFaculty creates the default faculty account unless a user with
// that username already exists. It reports whether an account was created.
func CreateDefaultFaculty(
	ctx context.Context,
	users appRepos.IUserRepository,
	creator FacultyCreator,
	account FacultyAccount,
	lgr zerolog.Logger,
) (bool, error) {
	lgr.Info().Str("username", account.Username).Msg("Checking default faculty account...")

	_, err := users.GetUserByUsername(ctx, account.Username)
	if err == nil {
		lgr.Info().Str("username", account.Username).Msg("Default faculty already exists, skipping")
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, fmt.Errorf("failed to look up default faculty: %w", err)
	}

	input := dto.UserInput{
		Username:  account.Username,
		Password:  account.Password,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
	}
	profile := &appModels.Faculty{
		Subject:       account.Subject,
		ContactNumber: account.ContactNumber,
		Address:       account.Address,
	}

	faculty, err := creator.CreateFaculty(ctx, input, profile)
	if err != nil {
		return false, fmt.Errorf("failed to create default faculty: %w", err)
	}

	lgr.Info().
		Int64("facultyID", faculty.ID).
		Str("username", account.Username).
		Str("subject", faculty.Subject).
		Msg("Default faculty account created")
	return true, nil
}
