package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"sponsorweb/internal/appstatus"
)

// Student is the full editable projection of a student record. The
// backend has no partial-update endpoint, so updates resend the whole
// projection.
type Student struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Age               int              `json:"age"`
	Location          string           `json:"location"`
	Story             string           `json:"story"`
	FundingGoal       float64          `json:"fundingGoal"`
	AmountRaised      float64          `json:"amountRaised"`
	IsVisible         bool             `json:"isVisible"`
	ApplicationStatus appstatus.Status `json:"applicationStatus"`
	ProfileImageURL   string           `json:"profileImageUrl"`
	GalleryImageURLs  []string         `json:"galleryImageUrls"`
	Documents         []Document       `json:"documents"`
	ProgressUpdates   []ProgressUpdate `json:"progressUpdates,omitempty"`
}

// Document is file metadata attached to a student. New documents are
// buffered client-side and only persisted with the enclosing student
// update.
type Document struct {
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	DocumentType string `json:"documentType"`
	FileSize     int64  `json:"fileSize"`
}

// ListStudents fetches the student collection. search is passed
// through as a query param; the backend may or may not honor it, so
// the web tier filters again.
func (c *Client) ListStudents(ctx context.Context, search string) ([]Student, error) {
	path := "/students"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var students []Student
	if err := c.do(ctx, http.MethodGet, path, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// ListStudentsByStatus filters the collection by application status.
func (c *Client) ListStudentsByStatus(ctx context.Context, status appstatus.Status) ([]Student, error) {
	var students []Student
	path := fmt.Sprintf("/students/by-status?status=%d", int(status))
	if err := c.do(ctx, http.MethodGet, path, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudent fetches a single record.
func (c *Client) GetStudent(ctx context.Context, id int) (*Student, error) {
	var student Student
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/students/%d", id), nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateStudent creates a record (manager/admin only).
func (c *Client) CreateStudent(ctx context.Context, s *Student) (*Student, error) {
	var created Student
	if err := c.do(ctx, http.MethodPost, "/students", s, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStudent sends the full editable projection.
func (c *Client) UpdateStudent(ctx context.Context, s *Student) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/students/%d", s.ID), s, nil)
}

// DeleteStudent removes a record (manager/admin only).
func (c *Client) DeleteStudent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/students/%d", id), nil, nil)
}

// MySponsoredStudents returns the calling donor's roster.
func (c *Client) MySponsoredStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/donors/my-students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}
