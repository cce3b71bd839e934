package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"sneakerdex/internal/auth"
	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

// SessionInfo is the current state of a session.
type SessionInfo struct {
	User      *model.User
	ExpiresAt time.Time
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	SignIn(ctx context.Context, username, password string) (*auth.Session, *model.Identity, error)
	SignInExternal(ctx context.Context, profile model.ExternalProfile) (*auth.Session, *model.User, error)
	Session(ctx context.Context, token string) (*SessionInfo, error)
	Refresh(ctx context.Context, token string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

type authService struct {
	users       repository.UserRepository
	verifier    CredentialVerifier
	resolver    IdentityResolver
	provisioner AccountProvisioner
	sessions    auth.SessionIssuerInterface
	hasher      auth.PasswordHasher
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	verifier CredentialVerifier,
	resolver IdentityResolver,
	provisioner AccountProvisioner,
	sessions auth.SessionIssuerInterface,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) AuthService {
	return &authService{
		users:       users,
		verifier:    verifier,
		resolver:    resolver,
		provisioner: provisioner,
		sessions:    sessions,
		hasher:      hasher,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Register creates a local account. Taken usernames and emails are reported
// with one generic error.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	switch {
	case utf8.RuneCountInString(username) < minUsernameLength:
		return nil, apperrors.NewValidationError("username must be at least %d characters long", minUsernameLength)
	case s.validate.Var(email, "required,email") != nil:
		return nil, apperrors.NewValidationError("please enter a valid email")
	case utf8.RuneCountInString(password) < minPasswordLength:
		return nil, apperrors.NewValidationError("password must be at least %d characters long", minPasswordLength)
	case len(password) > auth.MaxPasswordBytes:
		return nil, apperrors.NewValidationError("password must be at most %d bytes long", auth.MaxPasswordBytes)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "check user existence failed", "error", err)
		return nil, apperrors.ErrInternal
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "hash password failed", "error", err)
		return nil, apperrors.ErrInternal
	}

	user := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "create user failed", "error", err)
		return nil, apperrors.ErrInternal
	}

	user.PasswordHash = ""
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// SignIn verifies credentials and issues a session.
func (s *authService) SignIn(ctx context.Context, username, password string) (*auth.Session, *model.Identity, error) {
	identity, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.issue(ctx, identity.ID.String())
	if err != nil {
		return nil, nil, err
	}
	return session, identity, nil
}

// SignInExternal provisions or links the account behind profile and issues a session.
func (s *authService) SignInExternal(ctx context.Context, profile model.ExternalProfile) (*auth.Session, *model.User, error) {
	user, err := s.provisioner.ProvisionOrLink(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.issue(ctx, user.ID.String())
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// Session re-resolves the user behind token.
func (s *authService) Session(ctx context.Context, token string) (*SessionInfo, error) {
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		return nil, apperrors.ErrSessionInvalid
	}

	user := s.resolver.ResolveByAnyID(ctx, claims.Subject)
	if user == nil {
		s.logger.WarnContext(ctx, "session subject not found", "sub", claims.Subject)
		return nil, apperrors.ErrSessionInvalid
	}
	return &SessionInfo{User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Refresh exchanges a valid token for a new one with rebuilt claims.
func (s *authService) Refresh(ctx context.Context, token string) (*auth.Session, error) {
	session, err := s.sessions.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionInvalid) {
			return nil, apperrors.ErrSessionInvalid
		}
		s.logger.ErrorContext(ctx, "refresh session failed", "error", err)
		return nil, apperrors.ErrInternal
	}
	return session, nil
}

// SignOut revokes token. Signing out an invalid token is a no-op.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		s.logger.ErrorContext(ctx, "revoke session failed", "jti", claims.ID, "error", err)
		return apperrors.ErrInternal
	}
	return nil
}

func (s *authService) issue(ctx context.Context, userID string) (*auth.Session, error) {
	session, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionInvalid) {
			s.logger.ErrorContext(ctx, "session subject did not resolve", "user_id", userID)
		} else {
			s.logger.ErrorContext(ctx, "issue session failed", "user_id", userID, "error", err)
		}
		return nil, apperrors.ErrInternal
	}
	return session, nil
}
