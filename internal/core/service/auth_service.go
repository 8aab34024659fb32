package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baketrak/order-system/internal/api/metrics"
	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
	"github.com/baketrak/order-system/internal/infrastructure/token"
)

// AuthService implements registration and login.
type AuthService struct {
	repo     ports.AuthRepository
	verifier PasswordVerifier
	tokens   *token.Manager
	logger   zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, verifier PasswordVerifier, tokens *token.Manager, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, verifier: verifier, tokens: tokens, logger: logger}
}

// Register creates a self-service account. The role is always customer: the
// registration form never decides privileges.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.create(ctx, username, password, domain.RoleCustomer)
}

// CreateUser is the administrator-only path and accepts any valid role.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	return s.create(ctx, username, password, role)
}

func (s *AuthService) create(ctx context.Context, username, password, role string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	credential, err := s.verifier.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:         uuid.NewString(),
		Username:   username,
		Credential: credential,
		Role:       role,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(role).Inc()
	s.logger.Info().Str("username", username).Str("role", role).Msg("user registered")
	return created, nil
}

// Login checks the submitted credentials and mints a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		return "", nil, err
	}

	if !s.verifier.Verify(password, user.Credential) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		s.logger.Warn().Str("username", username).Msg("login rejected")
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return signed, user, nil
}
