package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"sneakerdex/internal/auth"
	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

// AccountProvisioner turns an external sign-in into a local account.
type AccountProvisioner interface {
	ProvisionOrLink(ctx context.Context, profile model.ExternalProfile) (*model.User, error)
}

type accountProvisioner struct {
	users    repository.UserRepository
	resolver IdentityResolver
	hasher   auth.PasswordHasher
	logger   *slog.Logger
}

// NewAccountProvisioner creates a provisioner.
func NewAccountProvisioner(users repository.UserRepository, resolver IdentityResolver, hasher auth.PasswordHasher, logger *slog.Logger) AccountProvisioner {
	return &accountProvisioner{users: users, resolver: resolver, hasher: hasher, logger: logger}
}

// ProvisionOrLink returns the account bound to profile.ExternalID. An
// account with the same email and no external id is linked; otherwise a
// new account is created. Repeating the call for the same profile never
// creates a second account.
func (p *accountProvisioner) ProvisionOrLink(ctx context.Context, profile model.ExternalProfile) (*model.User, error) {
	externalID := strings.TrimSpace(profile.ExternalID)
	email := normalizeEmail(profile.Email)
	displayName := strings.TrimSpace(profile.DisplayName)
	if externalID == "" {
		return nil, apperrors.ErrIncompleteExternalProfile
	}

	if user := p.resolver.Resolve(ctx, ExternalID(externalID), SelectPublic); user != nil {
		return user, nil
	}

	if email != "" {
		user, err := p.linkByEmail(ctx, externalID, email)
		if err != nil || user != nil {
			return user, err
		}
	}

	if displayName == "" || email == "" {
		p.logger.WarnContext(ctx, "external profile missing required fields",
			"provider", profile.Provider, "external_id", externalID,
			"has_email", email != "", "has_name", displayName != "")
		return nil, apperrors.ErrIncompleteExternalProfile
	}

	placeholder, err := p.hasher.Placeholder()
	if err != nil {
		p.logger.ErrorContext(ctx, "placeholder hash failed", "error", err)
		return nil, apperrors.ErrInternal
	}

	user := &model.User{
		Username:     displayName,
		Email:        email,
		PasswordHash: placeholder,
		ExternalID:   &externalID,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return p.afterConflict(ctx, externalID, email)
		}
		p.logger.ErrorContext(ctx, "provision account failed", "external_id", externalID, "error", err)
		return nil, apperrors.ErrInternal
	}

	p.logger.InfoContext(ctx, "account provisioned", "user_id", user.ID, "provider", profile.Provider)
	user.PasswordHash = ""
	return user, nil
}

// linkByEmail returns nil, nil when no account has email.
func (p *accountProvisioner) linkByEmail(ctx context.Context, externalID, email string) (*model.User, error) {
	user, err := p.users.FindByEmail(ctx, email, repository.PublicUserColumns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		p.logger.ErrorContext(ctx, "email lookup failed", "error", err)
		return nil, apperrors.ErrInternal
	}

	if user.HasExternalID() {
		if *user.ExternalID == externalID {
			return user, nil
		}
		return nil, apperrors.ErrExternalIdentityConflict
	}

	linked, err := p.users.LinkExternalID(ctx, user.ID, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return p.afterConflict(ctx, externalID, email)
		}
		p.logger.ErrorContext(ctx, "link external id failed", "user_id", user.ID, "error", err)
		return nil, apperrors.ErrInternal
	}
	if !linked {
		// linked concurrently; report whatever won
		return p.afterConflict(ctx, externalID, email)
	}

	p.logger.InfoContext(ctx, "external identity linked", "user_id", user.ID)
	user.ExternalID = &externalID
	return user, nil
}

// afterConflict re-reads the account after a concurrent writer claimed the
// external id or email first.
func (p *accountProvisioner) afterConflict(ctx context.Context, externalID, email string) (*model.User, error) {
	if user := p.resolver.Resolve(ctx, ExternalID(externalID), SelectPublic); user != nil {
		return user, nil
	}

	user, err := p.users.FindByEmail(ctx, email, repository.PublicUserColumns)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// the conflict was on username
		return nil, apperrors.ErrUserAlreadyExists
	case err != nil:
		p.logger.ErrorContext(ctx, "re-resolve after conflict failed", "error", err)
		return nil, apperrors.ErrInternal
	case !user.HasExternalID():
		linked, err := p.users.LinkExternalID(ctx, user.ID, externalID)
		if err != nil || !linked {
			return nil, apperrors.ErrExternalIdentityConflict
		}
		user.ExternalID = &externalID
		return user, nil
	case *user.ExternalID == externalID:
		return user, nil
	default:
		return nil, apperrors.ErrExternalIdentityConflict
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
