// Package middleware holds the authorization gate that sits in front of
// every route.
package middleware

import (
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"sneakerdex/internal/auth"
	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
)

const (
	// ContextKeyClaims holds the verified *auth.Claims.
	ContextKeyClaims = "session"
	// ContextKeyUser holds the resolved *model.User.
	ContextKeyUser = "user"

	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session_token"
)

// GateState is the outcome of the gate for one request.
type GateState int

const (
	Unauthenticated GateState = iota
	TokenPresentUnresolved
	Authorized
	Rejected
)

func (s GateState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case TokenPresentUnresolved:
		return "token_present_unresolved"
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// PathRule matches a request path exactly, or by prefix when Prefix is set.
type PathRule struct {
	Path   string
	Prefix bool
}

// Matches reports whether path is covered by the rule.
func (r PathRule) Matches(path string) bool {
	if r.Prefix {
		return strings.HasPrefix(path, r.Path)
	}
	return path == r.Path
}

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []PathRule{
	{Path: "/"},
	{Path: "/about"},
	{Path: "/contact"},
	{Path: "/healthz"},
	{Path: "/auth/signin"},
	{Path: "/auth/signup"},
	{Path: "/auth/error"},
	{Path: "/api/auth/", Prefix: true},
	{Path: "/swagger/", Prefix: true},
}

// Begin is the first step of the gate. Public requests stay Unauthenticated,
// protected ones without verified claims are rejected, and the rest are
// TokenPresentUnresolved until Settle sees the resolved user.
func Begin(public bool, claims *auth.Claims) (GateState, error) {
	switch {
	case public:
		return Unauthenticated, nil
	case claims == nil:
		return Rejected, apperrors.ErrUnauthorized
	default:
		return TokenPresentUnresolved, nil
	}
}

// Settle finishes a TokenPresentUnresolved request with the user its
// subject resolved to, or nil.
func Settle(user *model.User) (GateState, error) {
	if user == nil {
		return Rejected, apperrors.ErrUserNotFound
	}
	return Authorized, nil
}

// Decide runs both steps of the gate.
func Decide(public bool, claims *auth.Claims, user *model.User) (GateState, error) {
	state, err := Begin(public, claims)
	if state != TokenPresentUnresolved {
		return state, err
	}
	return Settle(user)
}

// Gate rejects requests to protected paths that lack a session resolving to
// a stored user.
type Gate struct {
	public   []PathRule
	sessions auth.SessionIssuerInterface
	resolver auth.UserResolver
}

// NewGate creates a gate. A nil public list means DefaultPublicPaths.
func NewGate(sessions auth.SessionIssuerInterface, resolver auth.UserResolver, public []PathRule) *Gate {
	if public == nil {
		public = DefaultPublicPaths
	}
	return &Gate{public: public, sessions: sessions, resolver: resolver}
}

// IsPublic reports whether path bypasses the gate.
func (g *Gate) IsPublic(path string) bool {
	for _, rule := range g.public {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}

// Middleware verifies the token with echo-jwt and then attaches the user.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			return g.IsPublic(c.Request().URL.Path)
		},
		ContextKey:  ContextKeyClaims,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + SessionCookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.sessions.Parse(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			_, rejection := Begin(false, nil)
			return reject(rejection)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(g.attachUser(next))
	}
}

func (g *Gate) attachUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, _ := c.Get(ContextKeyClaims).(*auth.Claims)
		state, err := Begin(g.IsPublic(c.Request().URL.Path), claims)
		switch state {
		case Unauthenticated:
			return next(c)
		case Rejected:
			return reject(err)
		}

		user := g.resolver.ResolveByAnyID(c.Request().Context(), claims.Subject)
		if state, err := Settle(user); state != Authorized {
			return reject(err)
		}
		c.Set(ContextKeyUser, user)
		return next(c)
	}
}

func reject(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// CurrentUser returns the user attached by the gate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*model.User)
	return user, ok && user != nil
}

// CurrentClaims returns the verified session claims attached by the gate.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*auth.Claims)
	return claims, ok && claims != nil
}
