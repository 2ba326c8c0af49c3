package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications?limit&unread
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Page size"
// @Param unread query bool false "Only unread"
// @Success 200 {object} object{data=[]models.Notification}
// @Security BearerAuth
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.notificationService.List(c.UserContext(), currentUser(c), limit, c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": list})
}

// UnreadCount handles GET /api/notifications/unread-count
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} object{count=int}
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.notificationService.MarkRead(c.UserContext(), id, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Success 200 {object} object{updated=int}
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notificationService.MarkAllRead(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
