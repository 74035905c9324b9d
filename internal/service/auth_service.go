package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/auth"
	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const (
	minPasswordLength = 8
	// bcrypt only accepts passwords up to 72 bytes.
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Session is the result of a successful sign-in.
type Session struct {
	User      entity.User
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	hasher auth.Hasher
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, hasher auth.Hasher, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, entity.InvalidArgument("Name, email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, entity.InvalidArgument("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, entity.InvalidArgument("Password must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return nil, entity.InvalidArgument("Password must be at most 72 bytes")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, entity.Internal("failed to register user", err)
	}
	user := &entity.User{Name: name, Email: email, PasswordHash: hash, Role: entity.RoleUser}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return nil, entity.ErrEmailTaken
	}
	if err != nil {
		return nil, entity.Internal("failed to register user", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// SignIn checks the credentials and issues a session token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, entity.InvalidArgument("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrBadCredentials
	}
	if err != nil {
		return nil, entity.Internal("failed to sign in", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, entity.Internal("failed to sign in", err)
	}
	if !ok {
		s.logger.Info("Sign-in rejected", zap.String("user_id", user.ID))
		return nil, entity.ErrBadCredentials
	}

	token, expires, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, entity.Internal("failed to sign in", err)
	}
	return &Session{User: *user, Token: token, ExpiresAt: expires}, nil
}

// EnsureAdmin creates the ADMIN account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	admin := &entity.User{Name: "Admin", Email: email, PasswordHash: hash, Role: entity.RoleAdmin}
	if err := s.users.Upsert(ctx, admin); err != nil {
		return entity.Internal("failed to seed admin user", err)
	}
	s.logger.Info("Admin user ensured", zap.String("email", email))
	return nil
}
