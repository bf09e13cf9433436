package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// UploadResult is the backend's answer to a file upload: the storage
// path (possibly relative, resolve before display) and the stored name.
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// UploadProfilePicture uploads a student's primary photo.
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/fileupload/profile-picture", filename, r)
}

// UploadDocument uploads a document attachment.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/fileupload/document", filename, r)
}

// UploadGalleryImage uploads an auxiliary gallery photo. The backend
// exposes one image route; gallery photos share it with profile
// pictures and differ only in where the returned URL is attached.
func (c *Client) UploadGalleryImage(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/fileupload/profile-picture", filename, r)
}

// UploadProgressMedia uploads a photo or video for a progress update.
func (c *Client) UploadProgressMedia(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/progress/upload-media", filename, r)
}

// upload posts multipart form data with a single "file" field.
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) (result *UploadResult, err error) {
	defer c.observe(time.Now(), &err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, normalizeError(resp.StatusCode, body)
	}

	var stored UploadResult
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &stored, nil
}
