package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	appRepos "github.com/yigit/collegeapi/internal/app/repositories"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

type stubUsers struct {
	appRepos.IUserRepository
	existing map[string]bool
	err      error
}

func (s *stubUsers) GetUserByUsername(ctx context.Context, username string) (*appModels.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.existing[username] {
		return &appModels.User{ID: 1, Username: username}, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type stubCreator struct {
	calls []dto.UserInput
	err   error
}

func (s *stubCreator) CreateFaculty(ctx context.Context, input dto.UserInput, profile *appModels.Faculty) (*appModels.Faculty, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return nil, s.err
	}
	profile.ID = 7
	return profile, nil
}

func defaultAccount() FacultyAccount {
	return FacultyAccount{
		Username:      "faculty1",
		Password:      "Faculty@123",
		Email:         "faculty1@example.com",
		FirstName:     "John",
		LastName:      "Doe",
		Subject:       "Computer Science",
		ContactNumber: "1234567890",
		Address:       "123 Faculty Building",
	}
}

func TestCreateDefaultFaculty(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account on an empty store", func(t *testing.T) {
		creator := &stubCreator{}
		created, err := CreateDefaultFaculty(ctx, &stubUsers{}, creator, defaultAccount(), zerolog.Nop())

		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, creator.calls, 1)
		assert.Equal(t, "faculty1", creator.calls[0].Username)
		assert.Equal(t, "Faculty@123", creator.calls[0].Password)
	})

	t.Run("skips an existing username", func(t *testing.T) {
		creator := &stubCreator{}
		users := &stubUsers{existing: map[string]bool{"faculty1": true}}
		created, err := CreateDefaultFaculty(ctx, users, creator, defaultAccount(), zerolog.Nop())

		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, creator.calls)
	})

	t.Run("lookup failure is reported", func(t *testing.T) {
		creator := &stubCreator{}
		users := &stubUsers{err: apperrors.ErrStorageFault}
		_, err := CreateDefaultFaculty(ctx, users, creator, defaultAccount(), zerolog.Nop())

		assert.ErrorIs(t, err, apperrors.ErrStorageFault)
		assert.Empty(t, creator.calls)
	})

	t.Run("creation failure is reported", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := CreateDefaultFaculty(ctx, &stubUsers{}, &stubCreator{err: boom}, defaultAccount(), zerolog.Nop())

		assert.ErrorIs(t, err, boom)
	})
}
