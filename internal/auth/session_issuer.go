package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
)

const (
	// StrategyToken is the only supported session strategy: a signed,
	// self-contained token carried by the client.
	StrategyToken = "token"

	// ModeStandard issues long-lived sessions for the public deployment.
	ModeStandard = "standard"
	// ModeStrict issues short-lived sessions for higher-security deployments.
	ModeStrict = "strict"

	StandardMaxAge = 30 * 24 * time.Hour
	StrictMaxAge   = 24 * time.Hour

	// DefaultIssuer is written to and required in the iss claim.
	DefaultIssuer = "sneakerdex"
)

// SessionConfig selects how sessions are minted.
type SessionConfig struct {
	Strategy string
	MaxAge   time.Duration
	Issuer   string
}

// SessionConfigForMode returns the configuration for a deployment mode.
// A positive maxAge overrides the mode's default lifetime.
func SessionConfigForMode(strategy, mode string, maxAge time.Duration) (SessionConfig, error) {
	cfg := SessionConfig{Strategy: strategy, Issuer: DefaultIssuer}
	switch mode {
	case ModeStandard, "":
		cfg.MaxAge = StandardMaxAge
	case ModeStrict:
		cfg.MaxAge = StrictMaxAge
	default:
		return SessionConfig{}, fmt.Errorf("unknown session mode %q", mode)
	}
	if maxAge > 0 {
		cfg.MaxAge = maxAge
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the issuer cannot honour.
func (c SessionConfig) Validate() error {
	if c.Strategy != StrategyToken {
		return fmt.Errorf("unsupported session strategy %q", c.Strategy)
	}
	if c.MaxAge <= 0 {
		return errors.New("session max age must be positive")
	}
	return nil
}

// Claims is the session claim set. Subject carries the canonical user id.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	GoogleID string `json:"googleId,omitempty"`
	jwt.RegisteredClaims
}

// Session is a freshly minted token together with the claims it carries.
type Session struct {
	Token     string
	Claims    *Claims
	ExpiresAt time.Time
}

// UserResolver looks a user up by canonical or external id. Nil means the
// id does not resolve.
type UserResolver interface {
	ResolveByAnyID(ctx context.Context, id string) *model.User
}

// SessionIssuerInterface mints, verifies and revokes sessions.
type SessionIssuerInterface interface {
	Issue(ctx context.Context, userID string) (*Session, error)
	Refresh(ctx context.Context, token string) (*Session, error)
	Parse(ctx context.Context, token string) (*Claims, error)
	Revoke(ctx context.Context, claims *Claims) error
	MaxAge() time.Duration
}

// SessionIssuer signs HS256 session tokens.
type SessionIssuer struct {
	cfg      SessionConfig
	secret   []byte
	resolver UserResolver
	store    TokenStoreInterface
	logger   *slog.Logger
	now      func() time.Time
}

var _ SessionIssuerInterface = (*SessionIssuer)(nil)

// NewSessionIssuer creates a session issuer. store may be nil, in which case
// sessions cannot be revoked before they expire.
func NewSessionIssuer(secret string, cfg SessionConfig, resolver UserResolver, store TokenStoreInterface, logger *slog.Logger) (*SessionIssuer, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	return &SessionIssuer{
		cfg:      cfg,
		secret:   []byte(secret),
		resolver: resolver,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// MaxAge is the lifetime of every issued session.
func (s *SessionIssuer) MaxAge() time.Duration {
	return s.cfg.MaxAge
}

// Issue mints a session for userID. The claims are built from the stored
// user, never from caller input.
func (s *SessionIssuer) Issue(ctx context.Context, userID string) (*Session, error) {
	user := s.resolver.ResolveByAnyID(ctx, userID)
	if user == nil {
		return nil, apperrors.ErrSessionInvalid
	}
	return s.mint(user)
}

// Refresh verifies token and mints a replacement whose claims reflect the
// user as currently stored. A subject that no longer resolves invalidates
// the session.
func (s *SessionIssuer) Refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := s.Parse(ctx, token)
	if err != nil {
		return nil, err
	}
	user := s.resolver.ResolveByAnyID(ctx, claims.Subject)
	if user == nil {
		return nil, apperrors.ErrSessionInvalid
	}
	return s.mint(user)
}

// Parse verifies signature, issuer, expiry and revocation of token.
func (s *SessionIssuer) Parse(ctx context.Context, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSessionInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, apperrors.ErrSessionInvalid
	}

	if s.store != nil && claims.ID != "" {
		revoked, err := s.store.IsSessionRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "revocation check failed", "jti", claims.ID, "error", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session revoked", apperrors.ErrSessionInvalid)
		}
	}
	return claims, nil
}

// Revoke signs a session out for the rest of its lifetime.
func (s *SessionIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if s.store == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.store.RevokeSession(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionIssuer) mint(user *model.User) (*Session, error) {
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.cfg.MaxAge)

	claims := &Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if user.ExternalID != nil {
		claims.GoogleID = *user.ExternalID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, Claims: claims, ExpiresAt: expiresAt}, nil
}
