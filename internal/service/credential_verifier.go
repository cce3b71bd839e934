package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"sneakerdex/internal/auth"
	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// CredentialVerifier checks a username and password against stored hashes.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*model.Identity, error)
}

type credentialVerifier struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewCredentialVerifier creates a verifier.
func NewCredentialVerifier(users repository.UserRepository, hasher auth.PasswordHasher, logger *slog.Logger) CredentialVerifier {
	return &credentialVerifier{users: users, hasher: hasher, logger: logger}
}

// Verify returns ErrInvalidCredentialFormat for malformed input without
// touching storage, and ErrInvalidUsernameOrPassword both for unknown users
// and for wrong passwords.
func (v *credentialVerifier) Verify(ctx context.Context, username, password string) (*model.Identity, error) {
	username = strings.TrimSpace(username)
	if !wellFormedCredentials(username, password) {
		return nil, apperrors.ErrInvalidCredentialFormat
	}

	user, err := v.users.FindByUsernameWithSecret(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			v.hasher.Compare("", password)
			return nil, apperrors.ErrInvalidUsernameOrPassword
		}
		v.logger.ErrorContext(ctx, "credential lookup failed", "username", username, "error", err)
		return nil, apperrors.ErrInternal
	}

	if !v.hasher.Compare(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidUsernameOrPassword
	}
	return user.Identity(), nil
}

func wellFormedCredentials(username, password string) bool {
	return utf8.RuneCountInString(username) >= minUsernameLength &&
		utf8.RuneCountInString(password) >= minPasswordLength
}
