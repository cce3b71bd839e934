package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

// Selection chooses which user columns are loaded.
type Selection int

const (
	// SelectPublic loads every column except the password hash.
	SelectPublic Selection = iota
	// SelectWithSecret also loads the password hash.
	SelectWithSecret
)

func (s Selection) columns() []string {
	if s == SelectWithSecret {
		return append(append([]string{}, repository.PublicUserColumns...), "password_hash")
	}
	return repository.PublicUserColumns
}

// Identifier names a user in one of the two identity spaces. It is
// implemented only by LocalID and ExternalID.
type Identifier interface {
	String() string
	identifier()
}

// LocalID is a canonical account id.
type LocalID uuid.UUID

// ExternalID is an id issued by an external identity provider.
type ExternalID string

func (id LocalID) String() string    { return uuid.UUID(id).String() }
func (id ExternalID) String() string { return string(id) }

func (LocalID) identifier()    {}
func (ExternalID) identifier() {}

// IdentityResolver finds the canonical user behind an id. Lookups never
// fail: storage errors are logged and reported as "no user".
type IdentityResolver interface {
	Resolve(ctx context.Context, id Identifier, sel Selection) *model.User
	ResolveByAnyID(ctx context.Context, id string) *model.User
	ResolveByAnyIDSelect(ctx context.Context, id string, sel Selection) *model.User
}

type identityResolver struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewIdentityResolver creates a resolver over users.
func NewIdentityResolver(users repository.UserRepository, logger *slog.Logger) IdentityResolver {
	return &identityResolver{users: users, logger: logger}
}

func (r *identityResolver) Resolve(ctx context.Context, id Identifier, sel Selection) *model.User {
	var (
		user *model.User
		err  error
	)
	switch id := id.(type) {
	case LocalID:
		user, err = r.users.FindByID(ctx, uuid.UUID(id), sel.columns())
	case ExternalID:
		if id == "" {
			return nil
		}
		user, err = r.users.FindByExternalID(ctx, string(id), sel.columns())
	default:
		return nil
	}

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.ErrorContext(ctx, "identity lookup failed", "id", id.String(), "error", err)
		}
		return nil
	}
	return user
}

func (r *identityResolver) ResolveByAnyID(ctx context.Context, id string) *model.User {
	return r.ResolveByAnyIDSelect(ctx, id, SelectPublic)
}

// ResolveByAnyIDSelect tries id as a canonical id when it has that shape,
// then as an external id.
func (r *identityResolver) ResolveByAnyIDSelect(ctx context.Context, id string, sel Selection) *model.User {
	if id == "" {
		return nil
	}
	if local, err := uuid.Parse(id); err == nil {
		if user := r.Resolve(ctx, LocalID(local), sel); user != nil {
			return user
		}
	}
	return r.Resolve(ctx, ExternalID(id), sel)
}
