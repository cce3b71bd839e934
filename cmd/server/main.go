package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm/logger"

	"sneakerdex/docs"
	"sneakerdex/internal/auth"
	"sneakerdex/internal/cache"
	"sneakerdex/internal/config"
	"sneakerdex/internal/db"
	"sneakerdex/internal/handler"
	"sneakerdex/internal/logging"
	"sneakerdex/internal/middleware"
	"sneakerdex/internal/oauth"
	"sneakerdex/internal/repository"
	"sneakerdex/internal/router"
	"sneakerdex/internal/service"
)

const shutdownTimeout = 30 * time.Second

// @title Sneakerdex API
// @version 1.0
// @description Sneaker collection manager with credential and Google sign-in.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)
	if cfg.InsecureSessionSecret() {
		log.Warn("SESSION_SECRET is the development placeholder, sessions can be forged")
	}

	sessionCfg, err := auth.SessionConfigForMode(cfg.SessionStrategy, cfg.SessionMode, cfg.SessionMaxAge)
	if err != nil {
		log.Error("invalid session config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbClient, err := db.Connect(ctx, db.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        gormLogLevel(cfg.LogLevel),
	}, db.ConstantRetryPolicy(cfg.DBConnectAttempts, cfg.DBConnectDelay), log)
	if err != nil {
		log.Error("database init", "error", err)
		os.Exit(1)
	}

	if err := dbClient.Migrate(ctx, cfg.ResetDB, log); err != nil {
		log.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable, revocation and oauth state are disabled until it recovers", "error", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbClient.DB())
	sneakerRepo := repository.NewSneakerRepository(dbClient.DB())

	// Initialize auth components
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	tokenStore := auth.NewTokenStore(cacheClient)
	resolver := service.NewIdentityResolver(userRepo, log)
	sessions, err := auth.NewSessionIssuer(cfg.SessionSecret, sessionCfg, resolver, tokenStore, log)
	if err != nil {
		log.Error("session issuer init", "error", err)
		os.Exit(1)
	}

	// Initialize services
	verifier := service.NewCredentialVerifier(userRepo, hasher, log)
	provisioner := service.NewAccountProvisioner(userRepo, resolver, hasher, log)
	authService := service.NewAuthService(userRepo, verifier, resolver, provisioner, sessions, hasher, log)
	sneakerService := service.NewSneakerService(sneakerRepo, log)

	// Initialize handlers
	cookie := handler.CookieConfig{Secure: cfg.SessionCookieSecure}
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, cookie),
		User:    handler.NewUserHandler(),
		Sneaker: handler.NewSneakerHandler(sneakerService),
		Page:    handler.NewPageHandler(dbClient, cacheClient),
	}
	if cfg.GoogleEnabled() {
		google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		handlers.OAuth = handler.NewOAuthHandler(google, tokenStore, authService, cookie, log)
	} else {
		log.Info("google sign-in disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, log, middleware.NewGate(sessions, resolver, nil), handlers)

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info("server starting", "addr", addr, "swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"sneakerdex": func(ctx context.Context) error {
				log.Info("graceful shutdown initiated")
				// stop accepting requests before the stores go away
				httpErr := e.Shutdown(ctx)
				return errors.Join(httpErr, cacheClient.Close(), dbClient.Close())
			},
		},
	)

	exitCode := <-wait
	log.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}

func gormLogLevel(level string) logger.LogLevel {
	if logging.ParseLevel(level) == slog.LevelDebug {
		return logger.Info
	}
	return logger.Warn
}
