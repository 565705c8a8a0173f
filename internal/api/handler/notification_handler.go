package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationListResponse struct {
	Items       []domain.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

// List returns the signed-in user's notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationListResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	items, err := h.notifications.List(ctx, id.ID)
	if err != nil {
		return err
	}
	unread, err := h.notifications.UnreadCount(ctx, id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationListResponse{Items: items, UnreadCount: unread})
}

// MarkRead flags one notification as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), id.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags every notification of the user as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), id.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one notification.
//
// @Summary      Delete notification
// @Tags         notifications
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Request().Context(), id.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
