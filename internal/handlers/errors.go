package handlers

import (
	"errors"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

// ErrorHandler keeps echo's JSON error body and reports server errors to the
// log and, when enabled, to Sentry.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = httpError(err).(*echo.HTTPError)
		}

		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			l := logger.Ctx(c.Request().Context())
			l.Error().Err(cause).Int(logger.FieldStatus, he.Code).Msg("request failed")
			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.CaptureException(cause)
			}
		}

		msg := he.Message
		if m, ok := msg.(string); ok {
			msg = echo.Map{"success": false, "message": m}
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(he.Code)
		} else {
			werr = c.JSON(he.Code, msg)
		}
		if werr != nil {
			e.Logger.Error(werr)
		}
	}
}
