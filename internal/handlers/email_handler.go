package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const emailSettingsPath = "/email-settings"

// EmailHandler handles the email settings page and its verification codes
type EmailHandler struct {
	emails *services.EmailService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(emails *services.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// RegisterEmailRoutes registers email settings routes
func (h *EmailHandler) RegisterEmailRoutes(g *echo.Group) {
	g.GET(emailSettingsPath, h.ListEmails)
	g.POST(emailSettingsPath+"/add", h.AddEmail)
	g.POST(emailSettingsPath+"/delete/:id", h.DeleteEmail)
	g.POST(emailSettingsPath+"/set-primary/:id", h.SetPrimary)
	g.POST(emailSettingsPath+"/send-otp", h.SendOTP)
	g.POST(emailSettingsPath+"/send-otp/:id", h.SendOTP)
	g.POST(emailSettingsPath+"/verify/confirm", h.ConfirmOTP)
}

func (h *EmailHandler) ListEmails(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	settings, err := h.emails.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, settings)
}

// AddEmail attaches an unverified address and mails it a code
func (h *EmailHandler) AddEmail(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.AddEmailRequest
	if ok, err := bindForm(c, &req, emailSettingsPath); !ok {
		return err
	}
	email, err := h.emails.Add(c.Request().Context(), userID, req.Email)
	if err != nil {
		return redirectError(c, emailSettingsPath, err)
	}
	return redirectWithMessage(c, emailSettingsPath, flashSuccess, "A verification code was sent to "+email.Email+".")
}

func (h *EmailHandler) DeleteEmail(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return redirectWithMessage(c, emailSettingsPath, flashError, "Invalid email.")
	}
	if err := h.emails.Delete(c.Request().Context(), userID, id); err != nil {
		return redirectError(c, emailSettingsPath, err)
	}
	return redirectWithMessage(c, emailSettingsPath, flashSuccess, "Email address removed.")
}

// SetPrimary promotes a verified additional address
func (h *EmailHandler) SetPrimary(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return redirectWithMessage(c, emailSettingsPath, flashError, "Invalid email.")
	}
	address, err := h.emails.SetPrimary(c.Request().Context(), userID, id)
	if err != nil {
		return redirectError(c, emailSettingsPath, err)
	}
	return redirectWithMessage(c, emailSettingsPath, flashSuccess, address+" is now your primary email.")
}

// SendOTP mails a fresh code to the address with :id, to the posted address,
// or to the primary address when neither is given.
func (h *EmailHandler) SendOTP(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var emailID *uint
	if c.Param("id") != "" {
		id, err := parseUintParam(c, "id")
		if err != nil {
			return redirectWithMessage(c, emailSettingsPath, flashError, "Invalid email.")
		}
		emailID = &id
	}
	var req models.SendOTPRequest
	if ok, err := bindForm(c, &req, emailSettingsPath); !ok {
		return err
	}
	target, err := h.emails.SendOTP(c.Request().Context(), userID, emailID, req.Email)
	if err != nil {
		return redirectError(c, emailSettingsPath, err)
	}
	return redirectWithMessage(c, emailSettingsPath, flashSuccess, "A verification code was sent to "+target+".")
}

// ConfirmOTP checks a code for one of the user's addresses
func (h *EmailHandler) ConfirmOTP(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.VerifyEmailRequest
	if ok, err := bindForm(c, &req, emailSettingsPath); !ok {
		return err
	}
	outcome, err := h.emails.Confirm(c.Request().Context(), userID, req.Email, req.Code)
	if err != nil {
		return redirectError(c, emailSettingsPath, err)
	}
	level := flashSuccess
	switch outcome {
	case models.OTPVerified:
	case models.OTPExpired:
		level = flashWarning
	default:
		level = flashError
	}
	return redirectWithMessage(c, emailSettingsPath, level, services.OutcomeMessage(outcome))
}
