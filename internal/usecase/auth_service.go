package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hszk-dev/gocatalog/internal/auth"
	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// AuthService defines the interface for session-based authentication.
type AuthService interface {
	// Login verifies credentials and opens a session.
	// clientIP scopes the attempt throttle together with the username.
	Login(ctx context.Context, username, password, clientIP string) (*LoginOutput, error)

	// Logout revokes the session. Unknown tokens are ignored.
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	SessionTTL time.Duration
}

// DefaultAuthServiceConfig returns the default configuration.
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		SessionTTL: 24 * time.Hour,
	}
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	limiter  *auth.LoginLimiter

	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionStore,
	limiter *auth.LoginLimiter,
	cfg AuthServiceConfig,
) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		limiter:    limiter,
		sessionTTL: cfg.SessionTTL,
	}
}

func (s *authService) Login(ctx context.Context, username, password, clientIP string) (*LoginOutput, error) {
	key := username + "|" + clientIP
	if s.limiter != nil && !s.limiter.Allow(key) {
		slog.Warn("login throttled", "username", username, "client_ip", clientIP)
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.limiter != nil {
		s.limiter.Reset(key)
	}

	return &LoginOutput{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The account was deleted while the session was alive.
			_ = s.sessions.Delete(ctx, token)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
