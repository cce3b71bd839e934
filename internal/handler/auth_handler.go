package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sneakerdex/internal/auth"
	"sneakerdex/internal/middleware"
	"sneakerdex/internal/model"
	"sneakerdex/internal/service"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInRequest represents a credentials sign-in request.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest carries a session token in the body. The cookie and the
// Authorization header are accepted as well.
type TokenRequest struct {
	Token string `json:"token"`
}

// SessionResponse is returned whenever a session is issued.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *model.Identity `json:"user"`
}

// SessionStateResponse describes the current session.
type SessionStateResponse struct {
	User      *model.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := c.Validate(&req); err != nil {
		return invalidRequest(err)
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// SignIn godoc
// @Summary Sign in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	session, identity, err := h.authService.SignIn(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(err)
	}

	setSessionCookie(c, session, h.cookie)
	return c.JSON(http.StatusOK, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      identity,
	})
}

// Session godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionStateResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	info, err := h.authService.Session(c.Request().Context(), h.token(c, ""))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, SessionStateResponse{User: info.User, ExpiresAt: info.ExpiresAt})
}

// Refresh godoc
// @Summary Refresh the session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest false "Session token"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req TokenRequest
	_ = c.Bind(&req)

	session, err := h.authService.Refresh(c.Request().Context(), h.token(c, req.Token))
	if err != nil {
		return respondError(err)
	}

	setSessionCookie(c, session, h.cookie)
	return c.JSON(http.StatusOK, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User: &model.Identity{
			ID:       parseSubject(session.Claims),
			Username: session.Claims.Username,
			Email:    session.Claims.Email,
		},
	})
}

// SignOut godoc
// @Summary Sign out
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest false "Session token"
// @Success 200 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req TokenRequest
	_ = c.Bind(&req)

	if err := h.authService.SignOut(c.Request().Context(), h.token(c, req.Token)); err != nil {
		return respondError(err)
	}

	clearSessionCookie(c, h.cookie)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "signed out successfully",
	})
}

// token picks the session token from the body, the Authorization header or
// the session cookie, in that order.
func (h *AuthHandler) token(c echo.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func setSessionCookie(c echo.Context, session *auth.Session, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func parseSubject(claims *auth.Claims) uuid.UUID {
	id, _ := uuid.Parse(claims.Subject)
	return id
}
