package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/field-expense/internal"
)

type RepositoryAPI interface {
	// GetCredentials returns ErrInvalidCredentials when no user has email.
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	// GetUserWithPermissions returns ErrUserNotFound for unknown or inactive users.
	GetUserWithPermissions(ctx context.Context, userID int64) (*internal.User, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*internal.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	checker    PermissionChecker
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		checker:    NewPermissionChecker(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		if !errors.Is(err, internal.ErrInvalidCredentials) {
			s.logger.Error("failed to load credentials", "error", err)
		}
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !creds.IsActive {
		s.logger.Warn("login refused: user inactive", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrUserInactive
	}

	tokens, err := s.issue(strconv.FormatInt(creds.UserID, 10), dto.Email)
	if err != nil {
		s.logger.Error("failed to issue tokens", "error", err, "user_id", creds.UserID)
		return AuthTokens{}, err
	}

	s.logger.Info("user logged in successfully", "user_id", creds.UserID)
	return tokens, nil
}

// RefreshTokens rotates both tokens for a user that is still active.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	if _, err := s.repo.GetUserWithPermissions(ctx, userID); err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return AuthTokens{}, internal.ErrUserInactive
		}
		return AuthTokens{}, err
	}

	return s.issue(claims.UserID, claims.Email)
}

func (s *Service) issue(userID, email string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*internal.User, error) {
	return s.repo.GetUserWithPermissions(ctx, userID)
}

// IsAdmin answers from stored permissions, not token claims, so a revoked
// grant takes effect on the next call.
func (s *Service) IsAdmin(ctx context.Context, actorID int64) (bool, error) {
	user, err := s.repo.GetUserWithPermissions(ctx, actorID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.checker.IsAdmin(user.Permissions), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) RBACAuthorization() *RBACAuthorization {
	return NewRBACAuthorization(s.checker, s.logger)
}
