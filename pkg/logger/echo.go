package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const HeaderRequestID = "X-Request-ID"

// EchoMiddleware returns an echo middleware that:
//  1. Reads the request ID from X-Request-ID or generates one.
//  2. Puts a child logger with request metadata into the request context.
//  3. Echoes the request ID in the response.
//  4. Logs the completed request with status, latency and actor.
func EchoMiddleware(l zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = uuid.New().String()
			}

			child := l.With().
				Str(FieldRequestID, reqID).
				Str(FieldMethod, req.Method).
				Str(FieldPath, req.URL.Path).
				Str(FieldClientIP, c.RealIP()).
				Logger()

			c.Response().Header().Set(HeaderRequestID, reqID)
			c.SetRequest(req.WithContext(WithLogger(req.Context(), child)))

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			evt := child.Info()
			status := c.Response().Status
			if status >= 500 {
				evt = child.Error().Err(err)
			}
			evt = evt.Int(FieldStatus, status).
				Float64(FieldLatency, float64(time.Since(start).Microseconds())/1000)
			if userID, ok := c.Get(FieldUserID).(uint); ok {
				evt = evt.Uint(FieldUserID, userID)
			}
			if username, ok := c.Get(FieldUsername).(string); ok {
				evt = evt.Str(FieldUsername, username)
			}
			evt.Msg("request completed")
			return nil
		}
	}
}
