package handler

import (
	"net/http"

	"manu4/internal/middleware"
	"manu4/internal/models"
	"manu4/internal/repository"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	repo *repository.PushSubscriptionRepository
}

func NewPushHandler(repo *repository.PushSubscriptionRepository) *PushHandler {
	return &PushHandler{repo: repo}
}

// Subscribe registers (or re-registers) a Web Push subscription. The body is
// the browser's PushSubscription JSON.
func (h *PushHandler) Subscribe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys required"})
		return
	}
	sub := &models.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
		Active:    true,
	}
	if err := h.repo.Upsert(sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "subscribed"})
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint required"})
		return
	}
	if err := h.repo.DeleteByEndpoint(userID, req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsubscribe failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}
