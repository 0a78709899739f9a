package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/auth"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService handles account registration and login.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	hasher *auth.PasswordHasher
	logger *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenIssuer,
	hasher *auth.PasswordHasher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, logger: logger}
}

// Register creates a client account and issues a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, util.NewValidationError("valid email is required", nil)
	}
	if name == "" {
		return nil, util.NewValidationError("name is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, util.MapError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		Role:         domain.UserRoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	// Channel-created accounts (mailbox, phone) have no password until the
	// client claims them.
	if user.PasswordHash == nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if !s.hasher.Verify(*user.PasswordHash, password) {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
