package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/repositories"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	pkgauth "github.com/mzajac/examflow/internal/pkg/auth"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// TokenPair carries the issued tokens and their lifetimes in seconds.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	RefreshExpiresIn int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, user *models.User, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.TokenRepository
	jwtService *pkgauth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository, jwtService *pkgauth.JWTService) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
	}
}

// Register creates a new user account with a hashed password
func (s *authServiceImpl) Register(ctx context.Context, user *models.User, password string) (int64, error) {
	if strings.TrimSpace(user.Email) == "" {
		return 0, fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}
	if len(password) < 8 {
		return 0, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidationFailed)
	}
	switch user.RoleType {
	case models.RoleLecturer, models.RoleStarosta, models.RoleDeanOffice:
	default:
		return 0, fmt.Errorf("%w: unknown role type %q", apperrors.ErrValidationFailed, user.RoleType)
	}

	hashed, err := pkgauth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}
	user.Password = hashed
	user.IsActive = true

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	logger.Info().Int64("userID", id).Str("role", string(user.RoleType)).Msg("User registered")
	return id, nil
}

// Login verifies credentials and issues a token pair
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}
	if !pkgauth.CheckPassword(user.Password, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// RefreshToken rotates a refresh token into a fresh token pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Rotation: the used token is revoked before a new pair is issued.
	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, refresh, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.Store(ctx, user.ID, refresh, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}
