package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/handlers"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/internal/router"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/anonto42/blogsphere/backend/pkg/config"
	"github.com/anonto42/blogsphere/backend/pkg/firebase"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/anonto42/blogsphere/backend/pkg/mailer"
	"github.com/anonto42/blogsphere/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.IsDevelopment(),
		ServiceName: "blogsphere-api",
	})
	l := logger.L()

	sentryEnabled := cfg.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		}); err != nil {
			l.Fatal().Err(err).Msg("failed to initialize sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.SQL); err != nil {
		l.Fatal().Err(err).Msg("failed to auto migrate models")
	}

	var storeOpts []repositories.StoreOption
	if db.Mongo != nil {
		blogs := repositories.NewMongoBlogRepository(db.Mongo.Database(db.MongoDatabase))
		if err := blogs.EnsureIndexes(ctx); err != nil {
			l.Fatal().Err(err).Msg("failed to create mongo indexes")
		}
		storeOpts = append(storeOpts, repositories.WithBlogRepository(blogs))
	}
	store := repositories.NewStore(db.SQL, storeOpts...)

	var c cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		if c, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			l.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}
	defer c.Close()

	var mail services.Mailer = mailer.Log{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	// Firebase login is optional
	var tokens services.TokenVerifier
	if app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath); err == nil {
		tokens = app.AuthClient
	} else if !errors.Is(err, firebase.ErrNoCredentials) {
		l.Fatal().Err(err).Msg("failed to initialize firebase")
	} else {
		l.Info().Msg("firebase login disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(e)
	config.SetupMiddleware(e, l, sentryEnabled)

	router.SetupRoutes(e, router.Dependencies{
		Store:    store,
		Mongo:    db.Mongo,
		Cache:    c,
		Mailer:   mail,
		Firebase: tokens,
		OTP:      services.OTPConfig{Length: cfg.OTPLength},
		Account:  services.AccountConfig{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTTTL},
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server stopped")
		}
	}()
	l.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("graceful shutdown failed")
	}
	l.Info().Msg("server stopped")
}
