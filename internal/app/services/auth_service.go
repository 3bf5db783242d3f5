package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/repositories"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.IUserRepository
	tokenRepo  repositories.ITokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user by username and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Str("username", username).Msg("Login rejected: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.issueTokens(ctx, user, func(pair *auth.TokenPair) error {
		return s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("userType", resp.UserType).Msg("User logged in")
	return resp, nil
}

// RefreshToken exchanges a live refresh token for a new pair. The used token
// is revoked in the same transaction that stores its successor.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return s.issueTokens(ctx, user, func(pair *auth.TokenPair) error {
		return s.tokenRepo.RotateToken(ctx, refreshToken, pair.RefreshToken, user.ID, pair.RefreshExpiresAt)
	})
}

// issueTokens resolves the role of user, signs a pair and hands it to store
func (s *AuthService) issueTokens(ctx context.Context, user *models.User, store func(*auth.TokenPair) error) (*dto.TokenResponse, error) {
	role, err := s.userRepo.ResolveRole(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error resolving user role: %w", err)
	}

	pair, err := s.jwtService.GenerateTokenPair(user, role)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := store(pair); err != nil {
		return nil, err
	}

	resp := &dto.TokenResponse{
		Access:           pair.AccessToken,
		Refresh:          pair.RefreshToken,
		TokenType:        auth.TokenTypeBearer,
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		UserType:         string(models.RoleNone),
	}
	if id, ok := role.FacultyID(); ok {
		resp.UserType = string(models.RoleFaculty)
		resp.FacultyID = &id
	} else if id, ok := role.StudentID(); ok {
		resp.UserType = string(models.RoleStudent)
		resp.StudentID = &id
	}
	return resp, nil
}

// CleanupExpiredTokens removes expired and long-revoked refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.CleanupExpiredTokens(ctx)
}
