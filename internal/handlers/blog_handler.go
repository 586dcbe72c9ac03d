package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BlogHandler handles blog authoring, blog pages and view counting
type BlogHandler struct {
	blogs *services.BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// RegisterPublicRoutes registers blog routes open to anonymous readers
func (h *BlogHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/blogs/:slug", h.GetBlog)
	g.POST("/blog/:id/increment-view", h.IncrementView)
}

// RegisterBlogRoutes registers the author's blog routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group) {
	g.POST("/blogs", h.CreateBlog)
	g.POST("/blogs/:slug/edit", h.UpdateBlog)
	g.POST("/blogs/:slug/delete", h.DeleteBlog)
	g.GET("/user_blog", h.MyBlogs)
	g.GET("/suggest/tags", h.SuggestTags)
	g.GET("/suggest/categories", h.SuggestCategories)
}

func (h *BlogHandler) CreateBlog(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.BlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blog, err := h.blogs.Create(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, blog)
}

// UpdateBlog replaces the blog's fields. Only the author may edit.
func (h *BlogHandler) UpdateBlog(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.BlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	blog, err := h.blogs.Update(c.Request().Context(), userID, c.Param("slug"), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, blog)
}

func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.blogs.Delete(c.Request().Context(), userID, c.Param("slug")); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "Blog deleted."})
}

// GetBlog returns one blog with its comments and whether the viewer liked it
func (h *BlogHandler) GetBlog(c echo.Context) error {
	detail, err := h.blogs.Detail(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, detail)
}

// MyBlogs lists the current user's published blogs with totals
func (h *BlogHandler) MyBlogs(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	blogs, stats, err := h.blogs.Mine(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"blogs": blogs, "stats": stats})
}

// IncrementView counts a view once per viewer per day. Authors reading their
// own blog are not counted.
func (h *BlogHandler) IncrementView(c echo.Context) error {
	result, err := h.blogs.IncrementView(c.Request().Context(), getUserIDFromContext(c), c.RealIP(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BlogHandler) SuggestTags(c echo.Context) error {
	tags, err := h.blogs.SuggestTags(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, tags)
}

func (h *BlogHandler) SuggestCategories(c echo.Context) error {
	categories, err := h.blogs.SuggestCategories(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, categories)
}
