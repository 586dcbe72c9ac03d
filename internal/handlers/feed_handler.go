package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles the blog list and the trending list
type FeedHandler struct {
	blogs *services.BlogService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(blogs *services.BlogService) *FeedHandler {
	return &FeedHandler{blogs: blogs}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/blogs", h.GetBlogs)
	g.GET("/trending_blogs", h.GetTrending)
}

// GetBlogs returns published blogs the viewer may see, newest first
func (h *FeedHandler) GetBlogs(c echo.Context) error {
	blogs, err := h.blogs.List(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return paginated(c, "blogs", blogs)
}

// GetTrending ranks blogs by views, optionally limited to today, this week or
// this month and filtered by q.
func (h *FeedHandler) GetTrending(c echo.Context) error {
	window := services.TrendingWindow(c.QueryParam("filter"))
	switch window {
	case services.TrendingToday, services.TrendingWeek, services.TrendingMonth:
	default:
		window = services.TrendingAll
	}
	blogs, err := h.blogs.Trending(c.Request().Context(), getUserIDFromContext(c), window, c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"blogs":  blogs,
			"filter": window,
			"query":  c.QueryParam("q"),
		},
	})
}

func paginated(c echo.Context, key string, blogs []models.BlogSummary) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	total := len(blogs)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			key: blogs[start:end],
		},
		"meta": echo.Map{
			"currentPage":  page,
			"totalPages":   int(math.Ceil(float64(total) / float64(limit))),
			"totalItems":   total,
			"itemsPerPage": limit,
			"hasNextPage":  end < total,
		},
	})
}
