package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthResponse is returned by every flow that logs the user in.
type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserCompact `json:"user"`
	Email string             `json:"email"`
}

// AuthHandler handles signup, login, password and account deletion requests
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/signup", h.Signup)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/firebase-login", h.FirebaseLogin)
	g.POST("/auth/password-reset/request", h.RequestPasswordReset)
	g.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)
}

// RegisterAccountRoutes registers the routes that need a logged-in user
func (h *AuthHandler) RegisterAccountRoutes(g *echo.Group) {
	g.POST("/settings/change-password", h.ChangePassword)
	g.POST("/delete_account", h.DeleteAccount)
}

// Signup creates an account and logs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, token, err := h.accounts.Signup(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, newAuthResponse(user, token))
}

// Login accepts either the username or the email together with the password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, token, err := h.accounts.Login(c.Request().Context(), req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, newAuthResponse(user, token))
}

// FirebaseLogin exchanges a firebase ID token for our own token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, token, err := h.accounts.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, newAuthResponse(user, token))
}

// RequestPasswordReset mails a reset code to the user's primary address
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	const back = "/auth/password-reset"
	var req models.PasswordResetRequest
	if ok, err := bindForm(c, &req, back); !ok {
		return err
	}
	address, err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Username)
	if err != nil {
		return redirectError(c, back, err)
	}
	return redirectWithMessage(c, "/auth/password-reset/confirm", flashSuccess, "A reset code was sent to "+address+".")
}

// ConfirmPasswordReset sets a new password when the code checks out
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	const back = "/auth/password-reset/confirm"
	var req models.PasswordResetConfirmRequest
	if ok, err := bindForm(c, &req, back); !ok {
		return err
	}
	outcome, err := h.accounts.ConfirmPasswordReset(c.Request().Context(), req)
	if err != nil {
		return redirectError(c, back, err)
	}
	if outcome != models.OTPVerified {
		return redirectWithMessage(c, back, flashError, services.OutcomeMessage(outcome))
	}
	return redirectWithMessage(c, "/auth/login", flashSuccess, "Your password has been reset. Please log in.")
}

// ChangePassword checks the old password and stores the new one
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "Password changed successfully."})
}

// DeleteAccount removes the account after the password and "DELETE" check
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.DeleteAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.Delete(c.Request().Context(), userID, req); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "Your account has been deleted."})
}

func newAuthResponse(user *models.User, token string) AuthResponse {
	return AuthResponse{Token: token, User: user.ToCompact(), Email: user.Email}
}
