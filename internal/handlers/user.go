package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile pages, profile edits and user search
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterPublicRoutes registers routes that anonymous visitors may use
func (h *UserHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/user/:username", h.GetUser)
	g.GET("/search-users", h.SearchUsers)
}

// RegisterProfileRoutes registers the owner's profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.POST("/update_profile", h.UpdateProfile)
	g.POST("/settings/visibility", h.UpdateVisibility)
}

// GetUser renders someone's profile as the current viewer may see it
func (h *UserHandler) GetUser(c echo.Context) error {
	view, err := h.profiles.View(c.Request().Context(), getUserIDFromContext(c), c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, view)
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return success(c, http.StatusOK, []models.UserCompact{})
	}
	users, err := h.profiles.Search(c.Request().Context(), getUserIDFromContext(c), q)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, users)
}

// GetProfile returns the authenticated user with the full profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.Get(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.Update(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, profile)
}

// UpdateVisibility switches between public, followers and private
func (h *UserHandler) UpdateVisibility(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateVisibilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.profiles.SetVisibility(c.Request().Context(), userID, req.Visibility); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"visibility": req.Visibility})
}
