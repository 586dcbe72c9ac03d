package config

import (
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

// SetupMiddleware installs the global middleware chain. The sentry middleware
// is only added when error reporting is enabled.
func SetupMiddleware(e *echo.Echo, l zerolog.Logger, sentryEnabled bool) {
	e.Use(logger.EchoMiddleware(l))
	e.Use(middleware.Recover())
	if sentryEnabled {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, logger.HeaderRequestID},
		ExposeHeaders:    []string{logger.HeaderRequestID},
		AllowCredentials: false,
	}))
	e.Use(middleware.BodyLimit("4M"))
}
