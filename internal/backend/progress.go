package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ProgressUpdate is a student-authored milestone post visible to
// sponsoring donors. It is created and edited independently of the
// student record.
type ProgressUpdate struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"studentId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Grade       string    `json:"grade,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	ReportDate  time.Time `json:"reportDate"`
}

// MyProgressUpdates returns the calling student's own updates.
func (c *Client) MyProgressUpdates(ctx context.Context) ([]ProgressUpdate, error) {
	var updates []ProgressUpdate
	if err := c.do(ctx, http.MethodGet, "/progress/my-progress-updates", nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// AllProgressUpdates is the admin view across every student.
func (c *Client) AllProgressUpdates(ctx context.Context) ([]ProgressUpdate, error) {
	var updates []ProgressUpdate
	if err := c.do(ctx, http.MethodGet, "/progress/all", nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// CreateProgressUpdate posts a new milestone.
func (c *Client) CreateProgressUpdate(ctx context.Context, u *ProgressUpdate) (*ProgressUpdate, error) {
	var created ProgressUpdate
	if err := c.do(ctx, http.MethodPost, "/progress/create", u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProgressUpdate edits an existing milestone and returns the
// saved record so server-computed fields reach the caller.
func (c *Client) UpdateProgressUpdate(ctx context.Context, u *ProgressUpdate) (*ProgressUpdate, error) {
	var saved ProgressUpdate
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/progress/%d", u.ID), u, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteProgressUpdate removes a milestone.
func (c *Client) DeleteProgressUpdate(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/progress/%d", id), nil, nil)
}
