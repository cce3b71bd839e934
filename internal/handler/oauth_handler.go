package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sneakerdex/internal/auth"
	"sneakerdex/internal/errors"
	"sneakerdex/internal/oauth"
	"sneakerdex/internal/service"
)

const oauthStateTTL = 10 * time.Minute

// OAuthHandler runs the external provider sign-in flow.
type OAuthHandler struct {
	provider    oauth.Provider
	states      auth.TokenStoreInterface
	authService service.AuthService
	cookie      CookieConfig
	logger      *slog.Logger
}

// NewOAuthHandler creates a new OAuth handler.
func NewOAuthHandler(
	provider oauth.Provider,
	states auth.TokenStoreInterface,
	authService service.AuthService,
	cookie CookieConfig,
	logger *slog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		states:      states,
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// Start godoc
// @Summary Start Google sign-in
// @Tags auth
// @Success 302
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google [get]
func (h *OAuthHandler) Start(c echo.Context) error {
	ctx := c.Request().Context()

	state := uuid.NewString()
	if err := h.states.SaveOAuthState(ctx, state, oauthStateTTL); err != nil {
		h.logger.ErrorContext(ctx, "save oauth state failed", "provider", h.provider.Name(), "error", err)
		return respondError(errors.ErrInternal)
	}

	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback godoc
// @Summary Finish Google sign-in
// @Tags auth
// @Produce json
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/google/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	state := c.QueryParam("state")
	if state == "" {
		return respondError(errors.ErrOAuthState)
	}
	ok, err := h.states.ConsumeOAuthState(ctx, state)
	if err != nil || !ok {
		return respondError(errors.ErrOAuthState)
	}

	if reason := c.QueryParam("error"); reason != "" {
		h.logger.InfoContext(ctx, "provider denied sign-in", "provider", h.provider.Name(), "reason", reason)
		return respondError(errors.ErrUnauthorized)
	}
	code := c.QueryParam("code")
	if code == "" {
		return respondError(errors.NewValidationError("code is required"))
	}

	profile, err := h.provider.Profile(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "fetch provider profile failed", "provider", h.provider.Name(), "error", err)
		return respondError(errors.ErrUnauthorized)
	}

	session, user, err := h.authService.SignInExternal(ctx, profile)
	if err != nil {
		return respondError(err)
	}

	setSessionCookie(c, session, h.cookie)
	return c.JSON(http.StatusOK, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user.Identity(),
	})
}
