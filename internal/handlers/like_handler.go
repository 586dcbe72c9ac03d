package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like/unlike HTTP requests
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/like/:blogId", h.ToggleLike)
}

// ToggleLike likes the blog, or removes the like if it already exists
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	result, err := h.likes.Toggle(c.Request().Context(), userID, c.Param("blogId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
