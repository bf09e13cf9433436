package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/session"
)

// notificationVM adds the badge color token the inbox renders with.
type notificationVM struct {
	backend.Notification
	Color string `json:"color"`
}

var notificationColors = map[string]string{
	"donation": "success",
	"progress": "info",
	"status":   "warning",
	"system":   "secondary",
}

func notificationColor(kind string) string {
	if c, ok := notificationColors[kind]; ok {
		return c
	}
	return "secondary"
}

// ListNotifications serves the inbox, newest first as the backend
// returns it.
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.client(c).ListNotifications(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	unread := 0
	out := make([]notificationVM, 0, len(notifications))
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
		out = append(out, notificationVM{Notification: n, Color: notificationColor(n.Type)})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out, "unread": unread})
}

// UnreadCount serves the badge from the poller's cache; before the
// first poll lands it falls back to a live fetch.
func (h *Handler) UnreadCount(c *gin.Context) {
	claims, _ := session.Current(c)

	if n, ok := h.poller.Unread(c.Request.Context(), claims.Subject); ok {
		c.JSON(http.StatusOK, gin.H{"unread": n, "cached": true})
		return
	}

	notifications, err := h.client(c).ListNotifications(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread, "cached": false})
}

// MarkNotificationRead flags one entry and invalidates the cached
// badge so the next fetch reflects it.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.client(c).MarkNotificationRead(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	claims, _ := session.Current(c)
	h.poller.Invalidate(c.Request.Context(), claims.Subject)
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead clears the whole badge.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.client(c).MarkAllNotificationsRead(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	claims, _ := session.Current(c)
	h.poller.Invalidate(c.Request.Context(), claims.Subject)
	c.Status(http.StatusNoContent)
}
