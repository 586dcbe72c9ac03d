package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterPublicRoutes registers comment routes open to anonymous readers
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/blog/:id/comments", h.GetComments)
}

// RegisterCommentRoutes registers comment routes that need a user
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment/:blogId/add", h.AddComment)
}

// AddComment adds a top-level comment or, with parent_id, a reply
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Add(c.Request().Context(), userID, c.Param("blogId"), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, comment)
}

// GetComments returns the approved comment threads of a blog
func (h *CommentHandler) GetComments(c echo.Context) error {
	threads, err := h.comments.Threads(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, threads)
}
