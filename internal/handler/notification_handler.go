package handler

import (
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	service service.NotificationService
	logger  *logrus.Logger
}

func NewNotificationHandler(s service.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{service: s, logger: logger}
}

// GET /api/notifications
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	notifications, err := h.service.GetNotifications(userID)
	if err != nil {
		return respondError(c, h.logger, "GetNotifications", err)
	}
	return c.JSON(notifications)
}

// PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "MarkRead", err)
	}
	if err := h.service.MarkRead(id, userID); err != nil {
		return respondError(c, h.logger, "MarkRead", err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// GET /api/notifications/unread/count
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	count, err := h.service.UnreadCount(userID)
	if err != nil {
		return respondError(c, h.logger, "UnreadCount", err)
	}
	return c.JSON(fiber.Map{"count": count})
}
