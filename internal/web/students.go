package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sponsorweb/internal/appstatus"
	"sponsorweb/internal/backend"
)

// ListStudents serves the browse page: an optional status tab and a
// case-insensitive substring search over name, location, and story.
func (h *Handler) ListStudents(c *gin.Context) {
	ctx := c.Request.Context()
	client := h.client(c)

	var (
		students []backend.Student
		err      error
	)
	if raw := c.Query("status"); raw != "" {
		wire, convErr := strconv.Atoi(raw)
		if convErr != nil || !appstatus.Status(wire).Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		students, err = client.ListStudentsByStatus(ctx, appstatus.Status(wire))
	} else {
		students, err = client.ListStudents(ctx, c.Query("search"))
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	search := c.Query("search")
	cards := make([]StudentCard, 0, len(students))
	for i := range students {
		if !matchesSearch(&students[i], search) {
			continue
		}
		cards = append(cards, h.card(&students[i]))
	}

	c.JSON(http.StatusOK, gin.H{"students": cards, "total": len(cards)})
}

// matchesSearch applies the browse page's substring filter. The
// backend may filter too; filtering again keeps the contract exact.
func matchesSearch(s *backend.Student, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Location), q) ||
		strings.Contains(strings.ToLower(s.Story), q)
}

// GetStudent serves the profile detail view model.
func (h *Handler) GetStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}

	student, err := h.client(c).GetStudent(c.Request.Context(), id)
	if err != nil {
		h.failNotFoundRedirect(c, err, "/students")
		return
	}
	c.JSON(http.StatusOK, h.detail(student))
}

// GetLightbox serves the modal viewer state for one gallery index.
func (h *Handler) GetLightbox(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gallery index"})
		return
	}

	student, err := h.client(c).GetStudent(c.Request.Context(), id)
	if err != nil {
		h.failNotFoundRedirect(c, err, "/students")
		return
	}
	if index >= len(student.GalleryImageURLs) {
		c.JSON(http.StatusNotFound, gin.H{"error": "gallery index out of range"})
		return
	}
	c.JSON(http.StatusOK, h.lightbox(student.GalleryImageURLs, index))
}

// CreateStudent creates a record (manager/admin only).
func (h *Handler) CreateStudent(c *gin.Context) {
	var student backend.Student
	if err := c.ShouldBindJSON(&student); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.client(c).CreateStudent(c.Request.Context(), &student)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.detail(created))
}

// DeleteStudent removes a record (manager/admin only). The browser
// refetches the list afterwards.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	if err := h.client(c).DeleteStudent(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeStatus performs application-status triage. The backend owns the
// transition rules; this resends the full projection with the new
// status and returns the refetched record.
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	var req struct {
		Status int `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !appstatus.Status(req.Status).Known() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status value"})
		return
	}

	ctx := c.Request.Context()
	client := h.client(c)

	student, err := client.GetStudent(ctx, id)
	if err != nil {
		h.failNotFoundRedirect(c, err, "/students")
		return
	}
	student.ApplicationStatus = appstatus.Status(req.Status)
	if err := client.UpdateStudent(ctx, student); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := client.GetStudent(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.detail(updated))
}

// SponsoredStudents serves the donor's roster.
func (h *Handler) SponsoredStudents(c *gin.Context) {
	students, err := h.client(c).MySponsoredStudents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	cards := make([]StudentCard, 0, len(students))
	for i := range students {
		cards = append(cards, h.card(&students[i]))
	}
	c.JSON(http.StatusOK, gin.H{"students": cards, "total": len(cards)})
}
