package handlers

import (
	"errors"
	"net/http"
	"strconv"

	notificationRepo "repairhub/database/repository/notification"
	"repairhub/services/notification"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// GetNotificationsHandler lists the caller's newest notifications.
func (h *NotificationHandler) GetNotificationsHandler(c *gin.Context) {
	limit := notification.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	inbox, err := h.Service.List(c.Request.Context(), c.GetString(utils.CtxUserID), limit)
	if err != nil {
		getLogger(c).Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, inbox)
}

// MarkReadHandler marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	err := h.Service.MarkRead(c.Request.Context(), c.GetString(utils.CtxUserID), req.ID)
	if errors.Is(err, notificationRepo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		getLogger(c).Error("Failed to mark notification read", zap.String("id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
