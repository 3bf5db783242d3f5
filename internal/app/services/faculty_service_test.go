package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

func createFaculty(t *testing.T, env *testEnv, username, subject string) (*models.Faculty, models.Identity) {
	t.Helper()
	f, err := env.faculty.CreateFaculty(context.Background(), &dto.CreateFacultyRequest{
		User:          userInput(username),
		Subject:       subject,
		ContactNumber: "1234567890",
		Address:       "123 Faculty Building",
	})
	require.NoError(t, err)
	return f, identityOf(f.UserID, username, models.FacultyRole(f.ID))
}

func createStudent(t *testing.T, env *testEnv, username string) (*models.Student, models.Identity) {
	t.Helper()
	s, err := env.creator.CreateStudent(context.Background(), userInput(username), newStudentProfile(), nil)
	require.NoError(t, err)
	return s, identityOf(s.UserID, username, models.StudentRole(s.ID))
}

func TestFacultyService_DashboardAfterEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faculty, actor := createFaculty(t, env, "faculty1", "Computer Science")
	student, _ := createStudent(t, env, "jane.roe")

	dashboard, err := env.faculty.GetDashboard(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", dashboard.FacultyInfo.Name)
	assert.Equal(t, "Computer Science", dashboard.FacultyInfo.Subject)
	assert.Equal(t, "faculty1@example.com", dashboard.FacultyInfo.Email)
	assert.Empty(t, dashboard.AssignedStudents)

	msg, err := env.faculty.AddStudent(ctx, actor, faculty.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Student jane.roe added to Computer Science class", msg)

	dashboard, err = env.faculty.GetDashboard(ctx, faculty.ID)
	require.NoError(t, err)
	require.Len(t, dashboard.AssignedStudents, 1)
	assert.Equal(t, dto.AssignedStudent{
		ID:         student.ID,
		Name:       "Jane Roe",
		Email:      "jane.roe@example.com",
		Contact:    "5551234567",
		BloodGroup: "O+",
	}, dashboard.AssignedStudents[0])
}

func TestFacultyService_AddStudentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faculty, actor := createFaculty(t, env, "faculty1", "Math")
	student, _ := createStudent(t, env, "jane.roe")

	for i := 0; i < 2; i++ {
		_, err := env.faculty.AddStudent(ctx, actor, faculty.ID, student.ID)
		require.NoError(t, err)
	}

	dashboard, err := env.faculty.GetDashboard(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Len(t, dashboard.AssignedStudents, 1)
}

func TestFacultyService_AddStudentErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faculty, actor := createFaculty(t, env, "faculty1", "Math")
	other, _ := createFaculty(t, env, "faculty2", "Physics")
	student, studentActor := createStudent(t, env, "jane.roe")

	_, err := env.faculty.AddStudent(ctx, actor, faculty.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = env.faculty.AddStudent(ctx, actor, 9999, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)

	_, err = env.faculty.AddStudent(ctx, actor, other.ID, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.faculty.AddStudent(ctx, studentActor, faculty.ID, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestFacultyService_UpdateOwnProfileOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faculty, actor := createFaculty(t, env, "faculty1", "Math")
	_, otherActor := createFaculty(t, env, "faculty2", "Physics")

	subject := "Applied Math"
	email := "new@example.com"
	req := &dto.UpdateFacultyRequest{Subject: &subject, User: &dto.UserUpdateInput{Email: &email}}

	_, err := env.faculty.UpdateFaculty(ctx, otherActor, faculty.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := env.faculty.UpdateFaculty(ctx, actor, faculty.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Applied Math", updated.Subject)
	assert.Equal(t, "new@example.com", updated.User.Email)
	assert.Equal(t, "1234567890", updated.ContactNumber)
}

func TestFacultyService_DeleteRemovesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	faculty, actor := createFaculty(t, env, "faculty1", "Math")
	student, _ := createStudent(t, env, "jane.roe")
	_, err := env.faculty.AddStudent(ctx, actor, faculty.ID, student.ID)
	require.NoError(t, err)

	require.NoError(t, env.faculty.DeleteFaculty(ctx, actor, faculty.ID))

	_, err = env.faculty.GetFacultyByID(ctx, faculty.ID)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)
	_, err = env.store.GetUserByID(ctx, faculty.UserID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Empty(t, env.store.enrollments)
}

func TestFacultyService_GetAllFaculties(t *testing.T) {
	env := newTestEnv(t)
	createFaculty(t, env, "faculty1", "Math")
	createFaculty(t, env, "faculty2", "Physics")

	faculties, err := env.faculty.GetAllFaculties(context.Background())
	require.NoError(t, err)
	require.Len(t, faculties, 2)
	assert.Equal(t, "Math", faculties[0].Subject)
}
