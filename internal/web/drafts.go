package web

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/draft"
	"sponsorweb/internal/session"
	"sponsorweb/internal/uploader"
)

// draftView is what the edit dialog renders: the buffered record plus
// whether anything is pending.
func (h *Handler) draftView(d *draft.Draft) gin.H {
	return gin.H{"student": h.detail(&d.Edited), "dirty": d.Dirty}
}

func (h *Handler) loadDraft(c *gin.Context) (*draft.Draft, string, int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return nil, "", 0, false
	}
	claims, _ := session.Current(c)

	d, ok, err := h.drafts.Get(c.Request.Context(), claims.Subject, id)
	if err != nil {
		h.fail(c, err)
		return nil, "", 0, false
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no open edit for this student"})
		return nil, "", 0, false
	}
	return d, claims.Subject, id, true
}

// OpenDraft starts the edit dialog: fetch the current record and open a
// clean draft from it.
func (h *Handler) OpenDraft(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	claims, _ := session.Current(c)

	student, err := h.client(c).GetStudent(c.Request.Context(), id)
	if err != nil {
		h.failNotFoundRedirect(c, err, "/students")
		return
	}

	d := draft.Open(student)
	if err := h.drafts.Put(c.Request.Context(), claims.Subject, id, d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.draftView(d))
}

// ApplyDraftFields buffers scalar field edits. Nothing reaches the
// backend until save.
func (h *Handler) ApplyDraftFields(c *gin.Context) {
	var edits draft.FieldEdits
	if err := c.ShouldBindJSON(&edits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}
	d.Apply(edits)
	if err := h.drafts.Put(c.Request.Context(), subject, id, d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.draftView(d))
}

// batchFromForm reads the multipart "files" entries into upload jobs.
func batchFromForm(c *gin.Context) ([]uploader.File, []*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return nil, nil, false
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return nil, nil, false
	}

	files, err := openAll(headers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return files, headers, true
}

// openAll opens every header. If one fails, the files opened so far
// are closed before returning.
func openAll(headers []*multipart.FileHeader) ([]uploader.File, error) {
	files := make([]uploader.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("unreadable file: %s", header.Filename)
		}
		files = append(files, uploader.File{Name: header.Filename, Size: header.Size, Data: f})
	}
	return files, nil
}

func closeAll(files []uploader.File) {
	for _, f := range files {
		if closer, ok := f.Data.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

func (h *Handler) recordUploads(results []uploader.Result) {
	if h.metrics == nil {
		return
	}
	for _, r := range results {
		if r.Err == nil {
			h.metrics.UploadsAccepted.Inc()
		} else {
			h.metrics.UploadsRejected.Inc()
		}
	}
}

// uploadErrors shapes the per-file failures for the alert list.
func uploadErrors(results []uploader.Result) []gin.H {
	var out []gin.H
	for _, r := range uploader.Failures(results) {
		out = append(out, gin.H{"file": r.Name, "error": r.Err.Error()})
	}
	return out
}

// UploadDraftGallery validates and stores a batch of gallery images,
// buffering the returned URLs in the draft. Files that fail validation
// or storage are reported per file; the rest of the batch proceeds.
func (h *Handler) UploadDraftGallery(c *gin.Context) {
	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}
	files, _, ok := batchFromForm(c)
	if !ok {
		return
	}
	defer closeAll(files)

	client := h.client(c)
	results := uploader.Batch(c.Request.Context(), h.logger, uploader.KindGalleryImage, files,
		func(ctx context.Context, filename string, r io.Reader) (string, error) {
			stored, err := client.UploadGalleryImage(ctx, filename, r)
			if err != nil {
				return "", err
			}
			return stored.URL, nil
		}, h.uploadConcurrency)
	h.recordUploads(results)

	d.AppendGallery(uploader.Accepted(results)...)
	if err := h.drafts.Put(c.Request.Context(), subject, id, d); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student": h.detail(&d.Edited),
		"dirty":   d.Dirty,
		"errors":  uploadErrors(results),
	})
}

// RemoveDraftGalleryImage drops one buffered gallery image.
func (h *Handler) RemoveDraftGalleryImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gallery index"})
		return
	}

	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}
	if err := d.RemoveGalleryAt(index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.drafts.Put(c.Request.Context(), subject, id, d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.draftView(d))
}

// UploadDraftDocuments stores document attachments and buffers their
// metadata in the draft.
func (h *Handler) UploadDraftDocuments(c *gin.Context) {
	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}
	files, headers, ok := batchFromForm(c)
	if !ok {
		return
	}
	defer closeAll(files)

	sizes := make(map[string]int64, len(headers))
	for _, header := range headers {
		sizes[header.Filename] = header.Size
	}

	client := h.client(c)
	results := uploader.Batch(c.Request.Context(), h.logger, uploader.KindDocument, files,
		func(ctx context.Context, filename string, r io.Reader) (string, error) {
			stored, err := client.UploadDocument(ctx, filename, r)
			if err != nil {
				return "", err
			}
			return stored.URL, nil
		}, h.uploadConcurrency)
	h.recordUploads(results)

	for _, result := range results {
		if result.Err != nil {
			continue
		}
		d.AddDocument(backend.Document{
			FileName:     result.Name,
			FilePath:     result.URL,
			DocumentType: uploader.DocumentType(result.Name),
			FileSize:     sizes[result.Name],
		})
	}
	if err := h.drafts.Put(c.Request.Context(), subject, id, d); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student": h.detail(&d.Edited),
		"dirty":   d.Dirty,
		"errors":  uploadErrors(results),
	})
}

// CancelDraft discards pending edits and returns the last-fetched
// record untouched.
func (h *Handler) CancelDraft(c *gin.Context) {
	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}
	if err := h.drafts.Discard(c.Request.Context(), subject, id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": h.detail(&d.Committed), "dirty": false})
}

// SaveDraft commits the draft: PUT the full projection, refetch to
// reconcile server-computed fields, then drop the draft. On failure the
// draft stays open so the dialog can show the error and retry.
func (h *Handler) SaveDraft(c *gin.Context) {
	d, subject, id, ok := h.loadDraft(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	client := h.client(c)

	if err := client.UpdateStudent(ctx, d.Payload()); err != nil {
		h.fail(c, err)
		return
	}

	refetched, err := client.GetStudent(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	d.Commit(refetched)

	if err := h.drafts.Discard(ctx, subject, id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": h.detail(refetched), "dirty": false})
}
