package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.POST("/notifications/mark_all_read", h.MarkAllAsRead)
	g.POST("/notifications/clear_all", h.ClearAll)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.notifications.List(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": result.Items,
			"unread_count":  result.Unread,
		},
		"meta": result.Meta,
	})
}

// GetGroupedNotifications buckets notifications into today, yesterday, this
// week and older.
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	grouped, err := h.notifications.Grouped(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, grouped)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}

// ClearAll deletes every notification of the user
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Clear(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"message": "All notifications cleared"})
}
