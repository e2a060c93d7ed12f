package handler

import (
	"net/http"
	"strconv"

	"manu4/internal/middleware"
	"manu4/internal/repository"
	"manu4/internal/ws"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo     *repository.NotificationRepository
	registry *ws.Registry
}

func NewNotificationHandler(repo *repository.NotificationRepository, registry *ws.Registry) *NotificationHandler {
	return &NotificationHandler{repo: repo, registry: registry}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.Query("unreadOnly") == "true"

	list, err := h.repo.ListByUserID(userID, unreadOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkRead flips a single notification and echoes notification_read to every
// live channel, so dashboards opened in other tabs converge with the REST
// caller the same way they do with a websocket mark_as_read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.repo.MarkRead(uint(id), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.registry.Broadcast(map[string]interface{}{
		"type":           ws.MsgNotificationRead,
		"notificationId": uint(id),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.repo.MarkAllRead(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.registry.SendToUser(userID, map[string]interface{}{"type": ws.MsgAllMarkedRead})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	count, err := h.repo.CountUnread(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
