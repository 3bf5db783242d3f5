package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/auth"
)

func newAuthService(env *testEnv) (*AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "collegeapi-test",
	})
	return NewAuthService(env.store, env.store, jwtService, zerolog.Nop()), jwtService
}

func TestAuthService_LoginCarriesRole(t *testing.T) {
	env := newTestEnv(t)
	svc, jwtService := newAuthService(env)
	ctx := context.Background()
	faculty, _ := createFaculty(t, env, "faculty1", "Math")
	student, _ := createStudent(t, env, "jane.roe")

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "faculty1", Password: "Secret@123"})
	require.NoError(t, err)
	assert.Equal(t, "faculty", resp.UserType)
	require.NotNil(t, resp.FacultyID)
	assert.Equal(t, faculty.ID, *resp.FacultyID)
	assert.Nil(t, resp.StudentID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := jwtService.ValidateAndExtractClaims(resp.Access)
	require.NoError(t, err)
	assert.Equal(t, models.FacultyRole(faculty.ID), claims.Identity().Role)

	resp, err = svc.Login(ctx, &dto.LoginRequest{Username: "jane.roe", Password: "Secret@123"})
	require.NoError(t, err)
	assert.Equal(t, "student", resp.UserType)
	require.NotNil(t, resp.StudentID)
	assert.Equal(t, student.ID, *resp.StudentID)
}

func TestAuthService_LoginWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	hashed, err := auth.NewHasher(4)("Secret@123")
	require.NoError(t, err)
	_, err = env.store.CreateUser(context.Background(), &models.User{Username: "admin", Password: hashed})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "Secret@123"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", resp.UserType)
	assert.Nil(t, resp.FacultyID)
	assert.Nil(t, resp.StudentID)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	createFaculty(t, env, "faculty1", "Math")

	tests := []dto.LoginRequest{
		{Username: "faculty1", Password: "wrong-password"},
		{Username: "nobody", Password: "Secret@123"},
		{Username: "", Password: ""},
	}
	for _, req := range tests {
		_, err := svc.Login(context.Background(), &req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	ctx := context.Background()
	createStudent(t, env, "jane.roe")

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "jane.roe", Password: "Secret@123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, login.Refresh, refreshed.Refresh)
	assert.Equal(t, "student", refreshed.UserType)

	_, err = svc.RefreshToken(ctx, login.Refresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "unknown-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	_, err = svc.RefreshToken(ctx, refreshed.Refresh)
	assert.NoError(t, err)
}
