package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Notification is one inbox entry. Type is only used for badge
// color-coding in the UI.
type Notification struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListNotifications fetches the caller's inbox.
func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	var notifications []Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a single entry as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

// MarkAllNotificationsRead clears the unread badge.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}
