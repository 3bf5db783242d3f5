package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func userInput(username string) dto.UserInput {
	return dto.UserInput{
		Username:  username,
		Password:  "Secret@123",
		FirstName: "Jane",
		LastName:  "Roe",
		Email:     username + "@example.com",
	}
}

func newStudentProfile() *models.Student {
	return &models.Student{Gender: models.GenderFemale, BloodGroup: "O+", ContactNumber: "5551234567", Address: "42 Campus Road"}
}

func TestAccountCreator_CreateFaculty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	faculty, err := env.creator.CreateFaculty(ctx, userInput("faculty1"), &models.Faculty{Subject: "Computer Science", ContactNumber: "1234567890"})
	require.NoError(t, err)

	assert.NotZero(t, faculty.ID)
	assert.Equal(t, "faculty1", faculty.User.Username)
	assert.True(t, auth.CheckPassword(faculty.User.Password, "Secret@123"))

	role, err := env.store.ResolveRole(ctx, faculty.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.FacultyRole(faculty.ID), role)
}

func TestAccountCreator_AcceptsUserAsObjectOrString(t *testing.T) {
	object := `{"user":{"username":"jane.roe","password":"Secret@123"},"subject":"Math","contact_number":"1","address":"x"}`
	encoded := `{"user":"{\"username\":\"jane.roe\",\"password\":\"Secret@123\"}","subject":"Math","contact_number":"1","address":"x"}`

	var fromObject, fromString dto.CreateFacultyRequest
	require.NoError(t, json.Unmarshal([]byte(object), &fromObject))
	require.NoError(t, json.Unmarshal([]byte(encoded), &fromString))
	assert.Equal(t, fromObject, fromString)

	env := newTestEnv(t)
	_, err := env.faculty.CreateFaculty(context.Background(), &fromString)
	assert.NoError(t, err)
}

func TestAccountCreator_MalformedUserString(t *testing.T) {
	var req dto.CreateFacultyRequest
	err := json.Unmarshal([]byte(`{"user":"{not json","subject":"Math"}`), &req)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAccountCreator_InvalidUserWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input dto.UserInput
	}{
		{"short username", dto.UserInput{Username: "abc", Password: "Secret@123"}},
		{"username with spaces", dto.UserInput{Username: "jane roe", Password: "Secret@123"}},
		{"numeric password", dto.UserInput{Username: "jane.roe", Password: "12345678"}},
		{"short password", dto.UserInput{Username: "jane.roe", Password: "abc"}},
		{"bad email", dto.UserInput{Username: "jane.roe", Password: "Secret@123", Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.creator.CreateStudent(context.Background(), tt.input, newStudentProfile(), nil)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
	assert.Empty(t, env.store.users)
}

func TestAccountCreator_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.creator.CreateStudent(ctx, userInput("jane.roe"), newStudentProfile(), nil)
	require.NoError(t, err)

	_, err = env.creator.CreateStudent(ctx, userInput("jane.roe"), newStudentProfile(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
	assert.Len(t, env.store.users, 1)
	assert.Len(t, env.store.students, 1)
}

func TestAccountCreator_CreateStudentWithPicture(t *testing.T) {
	env := newTestEnv(t)

	student, err := env.creator.CreateStudent(context.Background(), userInput("jane.roe"), newStudentProfile(),
		pictureOf("me.PNG", "image/png", encodeImage(t, "png", 4, 4)))
	require.NoError(t, err)

	require.True(t, student.HasProfilePic())
	assert.Equal(t, env.pictures.PathFor(student.UserID, "me.png"), *student.ProfilePic)
	assert.Len(t, storedPictures(t, env), 1)
}

func TestAccountCreator_InvalidPictureWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.creator.CreateStudent(context.Background(), userInput("jane.roe"), newStudentProfile(),
		pictureOf("me.png", "image/png", []byte("plain text")))

	assert.ErrorIs(t, err, apperrors.ErrPictureBadMimeType)
	assert.Empty(t, env.store.users)
	assert.Empty(t, storedPictures(t, env))
}

func TestAccountCreator_PictureFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.storage.saveErr = errors.New("disk full")

	_, err := env.creator.CreateStudent(context.Background(), userInput("jane.roe"), newStudentProfile(),
		pictureOf("me.png", "image/png", encodeImage(t, "png", 4, 4)))

	assert.ErrorIs(t, err, apperrors.ErrStorageFault)
	assert.Empty(t, env.store.users)
	assert.Empty(t, env.store.students)
}

func TestAccountCreator_ProfileFailureRollsBackUser(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("insert failed")
	env.store.failCreateStudent = boom

	_, err := env.creator.CreateStudent(context.Background(), userInput("jane.roe"), newStudentProfile(), nil)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, env.store.users)
}

func TestAccountCreator_RollbackFailureIsLogged(t *testing.T) {
	env := newTestEnv(t)
	var logs bytes.Buffer
	creator := NewAccountCreator(env.store, env.store, env.store, env.pictures, auth.NewHasher(bcrypt.MinCost), zerolog.New(&logs))

	boom := errors.New("insert failed")
	env.store.failCreateStudent = boom
	env.store.failDeleteUser = errors.New("connection lost")

	_, err := creator.CreateStudent(context.Background(), userInput("jane.roe"), newStudentProfile(), nil)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, logs.String(), "Saga compensation failed")
	assert.Contains(t, logs.String(), "jane.roe")
	assert.Contains(t, logs.String(), `"saga":"create_student"`)
	assert.Len(t, env.store.users, 1, "user stays behind when its rollback fails")
}
