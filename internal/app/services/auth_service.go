package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/auth"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/aaeducates/backend/internal/pkg/metrics"
	"github.com/aaeducates/backend/internal/pkg/revocation"
	"github.com/aaeducates/backend/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Auth error messages shown to clients
const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid email or password"
	msgAccountDisabled     = "User account is disabled"
	msgEmailTaken          = "User with this email already exists"
	msgUsernameTaken       = "Username already taken"
	msgInvalidRole         = "Invalid role"
	msgInvalidEmail        = "Enter a valid email address."
)

// AuthService handles registration and the credential exchange
type AuthService struct {
	users      repositories.Store[models.User]
	tokens     repositories.Store[models.RefreshToken]
	dir        *repositories.ProfileDirectory
	jwtService *auth.JWTService
	revoked    revocation.List
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	stores *repositories.Stores,
	dir *repositories.ProfileDirectory,
	jwtService *auth.JWTService,
	revoked revocation.List,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		users:      stores.Users,
		tokens:     stores.RefreshTokens,
		dir:        dir,
		jwtService: jwtService,
		revoked:    revoked,
		metrics:    m,
		logger:     logger.Component("auth"),
	}
}

// Register creates a bare identity and signs it in. The profile is created separately.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError(msgCredentialsRequired)
	}
	if !validation.IsEmail(email) {
		return nil, apperrors.NewValidationError("email", msgInvalidEmail)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("role", msgInvalidRole)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	if taken, err := s.exists(ctx, "email", email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.NewBadRequestError(msgEmailTaken)
	}
	if taken, err := s.exists(ctx, "username", username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.NewBadRequestError(msgUsernameTaken)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     email,
		Username:  &username,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.IncrementUsersRegistered()
	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")

	return s.generateTokenResponse(ctx, user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError(msgCredentialsRequired)
	}

	user, err := s.users.FindOne(ctx, repositories.Where("email", email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, msgInvalidCredentials)
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, msgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, msgAccountDisabled)
	}

	return s.generateTokenResponse(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.activeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, repositories.All(), stored.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, msgAccountDisabled)
	}

	// Revoke old token so it cannot be reused. Only one caller can flip an
	// unrevoked row, so a concurrent refresh with the same token loses here.
	stored.Revoked = true
	if err := s.tokens.UpdateWhere(ctx, repositories.Where("revoked", false), stored); err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// Verify checks an access token, including the revocation list
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the refresh token and the access token the caller presented
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	stored, err := s.tokens.FindOne(ctx, repositories.Where("token", refreshToken))
	switch {
	case err == nil:
		if stored.UserID != claims.UserID {
			return apperrors.ErrTokenInvalid
		}
		if !stored.Revoked {
			stored.Revoked = true
			if err := s.tokens.Update(ctx, stored); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	case repositories.IsNotFound(err):
		return apperrors.ErrTokenNotFound
	default:
		return err
	}

	if err := s.revoked.RevokeToken(ctx, claims.ID, s.jwtService.RemainingLifetime(claims)); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	s.logger.Info().Int64("userID", claims.UserID).Msg("User logged out")
	return nil
}

// Me returns the caller's own identity row with its profile id
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.Get(ctx, repositories.All(), userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError(msgNotFound)
		}
		return nil, err
	}
	if user.ProfileID, err = s.dir.ProfileID(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Helper functions

func (s *AuthService) exists(ctx context.Context, column, value string) (bool, error) {
	_, err := s.users.FindOne(ctx, repositories.Where(column, value))
	if err == nil {
		return true, nil
	}
	if repositories.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking if %s exists: %w", column, err)
}

func (s *AuthService) activeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokens.FindOne(ctx, repositories.Where("token", token))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}
	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if stored.ExpiresAt.Before(s.jwtService.Now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return stored, nil
}

// generateTokenResponse issues a token pair and stores the refresh token
func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokens.Create(ctx, &models.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiry,
	}); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	profileID, err := s.dir.ProfileID(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Access:           pair.AccessToken,
		Refresh:          pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User: &dto.AuthUser{
			ID:        user.ID,
			Email:     user.Email,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
			ProfileID: profileID,
		},
	}, nil
}
