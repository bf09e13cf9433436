package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/draft"
	"sponsorweb/internal/media"
	"sponsorweb/internal/metrics"
	"sponsorweb/internal/notify"
	"sponsorweb/internal/session"
)

// Handler serves the browser-facing view-model endpoints. It holds no
// domain state; every read goes to the backend and every pending edit
// lives in the draft store.
type Handler struct {
	backend  *backend.Client
	resolver *media.Resolver
	drafts   *draft.Store
	poller   *notify.Poller
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	uploadConcurrency int
}

// New wires the handler. metrics may be nil in tests.
func New(client *backend.Client, resolver *media.Resolver, drafts *draft.Store, poller *notify.Poller, m *metrics.Metrics, logger zerolog.Logger, uploadConcurrency int) *Handler {
	return &Handler{
		backend:           client,
		resolver:          resolver,
		drafts:            drafts,
		poller:            poller,
		metrics:           m,
		logger:            logger,
		uploadConcurrency: uploadConcurrency,
	}
}

// RegisterRoutes mounts all endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.Use(h.trackSession())

	r.GET("/students", h.ListStudents)
	r.GET("/students/:id", h.GetStudent)
	r.GET("/students/:id/gallery/:index", h.GetLightbox)

	r.POST("/students/:id/edit", h.OpenDraft)
	r.PUT("/students/:id/draft", h.ApplyDraftFields)
	r.POST("/students/:id/draft/gallery", h.UploadDraftGallery)
	r.DELETE("/students/:id/draft/gallery/:index", h.RemoveDraftGalleryImage)
	r.POST("/students/:id/draft/documents", h.UploadDraftDocuments)
	r.DELETE("/students/:id/draft", h.CancelDraft)
	r.POST("/students/:id/draft/save", h.SaveDraft)

	moderators := r.Group("", session.RequireModerator())
	moderators.POST("/students", h.CreateStudent)
	moderators.DELETE("/students/:id", h.DeleteStudent)
	moderators.PUT("/students/:id/status", h.ChangeStatus)
	moderators.GET("/progress/all", h.AllProgress)

	r.GET("/sponsorships", h.SponsoredStudents)

	r.GET("/progress", h.MyProgress)
	r.POST("/progress", h.CreateProgress)
	r.PUT("/progress/:id", h.UpdateProgress)
	r.DELETE("/progress/:id", h.DeleteProgress)
	r.POST("/progress/media", h.UploadProgressMedia)

	r.GET("/notifications", h.ListNotifications)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.PUT("/notifications/:id/read", h.MarkNotificationRead)
	r.POST("/notifications/read-all", h.MarkAllNotificationsRead)
}

// client returns a backend client carrying the caller's bearer token,
// so the backend enforces its own authorization.
func (h *Handler) client(c *gin.Context) *backend.Client {
	return h.backend.WithToken(session.Token(c))
}

// trackSession registers the caller with the notification poller.
func (h *Handler) trackSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := session.Current(c); ok && h.poller != nil {
			h.poller.Track(claims.Subject, session.Token(c))
		}
		c.Next()
	}
}
