package handlers

import (
	"net/http"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const followRequestsPath = "/follow-requests"

// FollowHandler handles follow, unfollow and follow request HTTP requests
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:id", h.ToggleFollow)
	g.POST("/follow/toggle/:username", h.ToggleFollowByUsername)
	g.POST("/follow/send/:username", h.SendFollowRequest)
	g.POST("/unfollow/:id", h.Unfollow)
	g.POST("/follow/approve/:username", h.ApproveRequest)
	g.POST("/follow/reject/:username", h.RejectRequest)
	g.POST("/notifications/follow_request/:id/:action", h.HandleFollowRequest)
	g.GET(followRequestsPath, h.ListRequests)
	g.GET("/ajax/follow-counts", h.Counts)
	g.GET("/ajax/follow-counts/:username", h.Counts)
}

// ToggleFollow follows, requests or unfollows depending on the current state
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	return h.toggle(c, userID, targetID)
}

func (h *FollowHandler) ToggleFollowByUsername(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := h.follows.UserID(c.Request().Context(), c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	return h.toggle(c, userID, targetID)
}

func (h *FollowHandler) toggle(c echo.Context, userID, targetID uint) error {
	status, err := h.follows.Toggle(c.Request().Context(), userID, targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// SendFollowRequest is the non-toggling form of follow. Repeated requests
// are reported as info rather than errors.
func (h *FollowHandler) SendFollowRequest(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	username := c.Param("username")
	back := refererPath(c, "/user/"+username)
	targetID, err := h.follows.UserID(c.Request().Context(), username)
	if err != nil {
		return redirectError(c, back, err)
	}
	status, err := h.follows.Request(c.Request().Context(), userID, targetID)
	if err != nil {
		return redirectError(c, back, err)
	}
	if status == services.StatusRequested {
		return redirectWithMessage(c, back, flashSuccess, "Follow request sent to "+username+".")
	}
	return redirectWithMessage(c, back, flashSuccess, "You are now following "+username+".")
}

// Unfollow removes the edge, cancelling the request if it was still pending
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	back := refererPath(c, "/")
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return redirectWithMessage(c, back, flashError, "Invalid user.")
	}
	if err := h.follows.Unfollow(c.Request().Context(), userID, targetID); err != nil {
		return redirectError(c, back, err)
	}
	return redirectWithMessage(c, back, flashSuccess, "Unfollowed.")
}

func (h *FollowHandler) ApproveRequest(c echo.Context) error {
	return h.decide(c, models.FollowRequestAccept)
}

func (h *FollowHandler) RejectRequest(c echo.Context) error {
	return h.decide(c, models.FollowRequestReject)
}

func (h *FollowHandler) decide(c echo.Context, action models.FollowRequestAction) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	username := c.Param("username")
	followerID, err := h.follows.UserID(ctx, username)
	if err != nil {
		return redirectError(c, followRequestsPath, err)
	}
	if action == models.FollowRequestAccept {
		if _, err := h.follows.Approve(ctx, userID, followerID); err != nil {
			return redirectError(c, followRequestsPath, err)
		}
		return redirectWithMessage(c, followRequestsPath, flashSuccess, "You accepted "+username+"'s follow request.")
	}
	if err := h.follows.Reject(ctx, userID, followerID); err != nil {
		return redirectError(c, followRequestsPath, err)
	}
	return redirectWithMessage(c, followRequestsPath, flashInfo, "You rejected "+username+"'s follow request.")
}

// HandleFollowRequest accepts or rejects the request behind a notification
func (h *FollowHandler) HandleFollowRequest(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	notificationID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	action := models.FollowRequestAction(c.Param("action"))
	follow, err := h.follows.HandleRequest(c.Request().Context(), userID, notificationID, action)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"action": action, "follow": follow})
}

// ListRequests returns pending requests addressed to the current user
func (h *FollowHandler) ListRequests(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	requests, err := h.follows.PendingRequests(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, requests)
}

// Counts returns follower/following counts for :username, or for the
// current user when no username is given.
func (h *FollowHandler) Counts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if username := c.Param("username"); username != "" {
		if userID, err = h.follows.UserID(c.Request().Context(), username); err != nil {
			return httpError(err)
		}
	}
	counts, err := h.follows.Counts(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}
