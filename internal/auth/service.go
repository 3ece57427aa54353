package auth

import (
	"log/slog"

	"github.com/festflow/festflow/internal/user"
)

// UserDirectory is the slice of the identity directory auth needs.
type UserDirectory interface {
	GetByUsername(username string) (*user.User, error)
}

type Service struct {
	users  UserDirectory
	tokens TokenGenerator
	logger *slog.Logger
}

func NewService(users UserDirectory, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate validates credentials and returns a token pair. Failures
// surface as ErrInvalidCredentials without distinguishing unknown user
// from wrong password.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByUsername(dto.Username)
	if err != nil {
		s.logger.Warn("login failed: unknown user", "username", dto.Username)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: bad password", "username", dto.Username)
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(u.Username)
}

// RefreshTokens validates a refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issueTokens(claims.Username)
}

// ResolveActor maps a validated access token to the directory user.
func (s *Service) ResolveActor(tokenString string) (*user.User, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(claims.Username)
	if err != nil {
		s.logger.Warn("token references unknown user", "username", claims.Username)
		return nil, ErrInvalidToken
	}
	return u, nil
}

func (s *Service) issueTokens(username string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(username)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(username)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
