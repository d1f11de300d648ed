package handler

import (
	"net/http"
	"strconv"

	"travelapproval/internal/middleware"
	"travelapproval/internal/service"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	auth                *middleware.Auth
}

func NewNotificationHandler(notificationService service.NotificationService, auth *middleware.Auth) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, auth: auth}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/notifications")
	group.Use(h.auth.Authenticate())
	{
		group.GET("", h.List)
		group.GET("/unread", h.Unread)
		group.POST("/:id/read", h.MarkRead)
	}
}

// List returns the caller's latest notifications with the unread count
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max items (default 100)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	ctx := c.Request.Context()
	notifications, err := h.notificationService.ListForUser(ctx, userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	}))
}

// Unread returns the caller's unread notifications, newest first
// @Summary      List unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Notification}
// @Router       /api/notifications/unread [get]
func (h *NotificationHandler) Unread(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.GetUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, notifications))
}

// MarkRead flags one of the caller's notifications as read. Repeating it is harmless.
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkReadForUser(c.Request.Context(), notificationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": notificationID, "is_read": true}))
}
