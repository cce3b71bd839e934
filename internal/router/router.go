package router

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"sneakerdex/internal/handler"
	"sneakerdex/internal/logging"
	authmw "sneakerdex/internal/middleware"
)

// Handlers groups the HTTP handlers served by the router. OAuth is nil when
// external sign-in is not configured.
type Handlers struct {
	Auth    *handler.AuthHandler
	OAuth   *handler.OAuthHandler
	User    *handler.UserHandler
	Sneaker *handler.SneakerHandler
	Page    *handler.PageHandler
}

// Register wires routes and middleware. Every route passes the gate; only
// the gate's public paths are reachable without a session.
func Register(e *echo.Echo, logger *slog.Logger, gate *authmw.Gate, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(gate.Middleware())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", h.Page.Home)
	e.GET("/about", h.Page.About)
	e.GET("/contact", h.Page.Contact)
	e.GET("/healthz", h.Page.Health)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/signin", h.Auth.SignIn)
	api.GET("/auth/session", h.Auth.Session)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/signout", h.Auth.SignOut)
	if h.OAuth != nil {
		api.GET("/auth/google", h.OAuth.Start)
		api.GET("/auth/google/callback", h.OAuth.Callback)
	}

	// Protected routes
	api.GET("/me", h.User.Me)

	api.GET("/sneakers", h.Sneaker.List)
	api.POST("/sneakers", h.Sneaker.Create)
	api.PUT("/sneakers", h.Sneaker.Update)
	api.DELETE("/sneakers", h.Sneaker.BulkDelete)
	api.GET("/sneakers/:id", h.Sneaker.Get)
	api.PUT("/sneakers/:id", h.Sneaker.UpdateByID)
	api.DELETE("/sneakers/:id", h.Sneaker.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
