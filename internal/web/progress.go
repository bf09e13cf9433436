package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/uploader"
)

// MyProgress lists the calling student's own milestone posts.
func (h *Handler) MyProgress(c *gin.Context) {
	updates, err := h.client(c).MyProgressUpdates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": h.progressVMs(updates)})
}

// AllProgress is the admin view across all students.
func (h *Handler) AllProgress(c *gin.Context) {
	updates, err := h.client(c).AllProgressUpdates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": h.progressVMs(updates)})
}

func (h *Handler) progressVMs(updates []backend.ProgressUpdate) []ProgressUpdateVM {
	out := make([]ProgressUpdateVM, 0, len(updates))
	for _, u := range updates {
		out = append(out, h.progressVM(u))
	}
	return out
}

type progressRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Grade       string `json:"grade"`
	Achievement string `json:"achievement"`
	PhotoURL    string `json:"photoUrl"`
	VideoURL    string `json:"videoUrl"`
	ReportDate  string `json:"reportDate" binding:"required"`
}

func (r *progressRequest) toUpdate(u *backend.ProgressUpdate) error {
	reportDate, err := time.Parse("2006-01-02", r.ReportDate)
	if err != nil {
		return fmt.Errorf("reportDate must be YYYY-MM-DD: %w", err)
	}
	u.Title = r.Title
	u.Description = r.Description
	u.Grade = r.Grade
	u.Achievement = r.Achievement
	u.PhotoURL = r.PhotoURL
	u.VideoURL = r.VideoURL
	u.ReportDate = reportDate
	return nil
}

// CreateProgress posts a new milestone.
func (h *Handler) CreateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var update backend.ProgressUpdate
	if err := req.toUpdate(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.client(c).CreateProgressUpdate(c.Request.Context(), &update)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.progressVM(*created))
}

// UpdateProgress edits an existing milestone.
func (h *Handler) UpdateProgress(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid progress update id"})
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update := backend.ProgressUpdate{ID: id}
	if err := req.toUpdate(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.client(c).UpdateProgressUpdate(c.Request.Context(), &update)
	if err != nil {
		h.failNotFoundRedirect(c, err, "/progress")
		return
	}
	c.JSON(http.StatusOK, h.progressVM(*saved))
}

// DeleteProgress removes a milestone.
func (h *Handler) DeleteProgress(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid progress update id"})
		return
	}
	if err := h.client(c).DeleteProgressUpdate(c.Request.Context(), id); err != nil {
		h.failNotFoundRedirect(c, err, "/progress")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadProgressMedia stores photos or a video for a milestone and
// returns their URLs for the compose form. Partial failures are
// reported per file.
func (h *Handler) UploadProgressMedia(c *gin.Context) {
	files, _, ok := batchFromForm(c)
	if !ok {
		return
	}
	defer closeAll(files)

	client := h.client(c)
	results := uploader.Batch(c.Request.Context(), h.logger, uploader.KindProgressMedia, files,
		func(ctx context.Context, filename string, r io.Reader) (string, error) {
			stored, err := client.UploadProgressMedia(ctx, filename, r)
			if err != nil {
				return "", err
			}
			return stored.URL, nil
		}, h.uploadConcurrency)
	h.recordUploads(results)

	urls := make([]string, 0)
	for _, u := range uploader.Accepted(results) {
		urls = append(urls, h.resolver.Resolve(u))
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls, "errors": uploadErrors(results)})
}
