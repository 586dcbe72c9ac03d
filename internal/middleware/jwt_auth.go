package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ContextKeyUser is where the authenticated claims are stored on echo.Context.
const ContextKeyUser = "user"

// Authenticator turns a bearer token into claims. Local tokens and firebase
// ID tokens are both accepted by the account service.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*models.JwtCustomClaims, error)
}

var errNoToken = errors.New("missing Authorization header")

// JWTAuthMiddleware rejects requests without a valid bearer token.
func JWTAuthMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, auth); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			return next(c)
		}
	}
}

// OptionalJWTAuth authenticates the request when a token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalJWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authenticate(c, auth)
			if err != nil && !errors.Is(err, errNoToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, auth Authenticator) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errNoToken
	}

	// Expecting "Bearer <token>"
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return errors.New("invalid Authorization header format")
	}

	claims, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(token))
	if err != nil {
		return err
	}

	c.Set(ContextKeyUser, claims)
	c.Set(logger.FieldUserID, claims.UserID)
	c.Set(logger.FieldUsername, claims.Username)

	req := c.Request()
	l := logger.Ctx(req.Context()).With().Uint(logger.FieldUserID, claims.UserID).Logger()
	c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), l)))
	return nil
}
