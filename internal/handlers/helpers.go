package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/middleware"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FlashCookie carries "level|message" to the page a browser flow redirects to.
const FlashCookie = "flash"

const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashWarning = "warning"
	flashError   = "error"
)

// getUserIDFromContext returns the authenticated user's ID, or 0 for
// anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.ContextKeyUser).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return services.Anonymous
	}
	return claims.UserID
}

// requireUser is getUserIDFromContext for routes that must be authenticated.
func requireUser(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == services.Anonymous {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(v), nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// success writes the {"success": true, "data": ...} envelope.
func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// httpError maps service errors to HTTP errors. Anything that is not a
// user-facing error becomes a 500 with the cause kept as the internal error.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if errors.Is(err, services.ErrMailDispatch) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to send email. Please try again later.").SetInternal(err)
	}
	if errors.Is(err, services.ErrInvalidToken) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	switch services.KindOf(err) {
	case services.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case services.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case services.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case services.KindRateLimit:
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case services.KindForbidden:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// redirectWithMessage answers a browser flow with 303 See Other and a flash.
func redirectWithMessage(c echo.Context, path, level, msg string) error {
	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(level + "|" + msg),
		Path:     "/",
		MaxAge:   int((30 * time.Second).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, path)
}

// redirectError flashes a user-facing error and redirects. State conflicts
// are informational rather than failures. Other errors are returned as is.
func redirectError(c echo.Context, path string, err error) error {
	if errors.Is(err, services.ErrMailDispatch) {
		return redirectWithMessage(c, path, flashError, "Failed to send email. Please try again later.")
	}
	switch services.KindOf(err) {
	case 0:
		return httpError(err)
	case services.KindConflict:
		return redirectWithMessage(c, path, flashInfo, err.Error())
	default:
		return redirectWithMessage(c, path, flashError, err.Error())
	}
}

// bindForm binds and validates for redirect flows, flashing the problem
// instead of answering 400.
func bindForm(c echo.Context, req interface{}, back string) (bool, error) {
	if err := bindAndValidate(c, req); err != nil {
		msg := "Invalid request."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		return false, redirectWithMessage(c, back, flashError, msg)
	}
	return true, nil
}

// refererPath returns the path of a same-host Referer, else fallback.
func refererPath(c echo.Context, fallback string) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
