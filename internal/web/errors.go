package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sponsorweb/internal/backend"
)

// redirectDelayMS lets the user read a not-found message before the
// browser navigates back to the owning list.
const redirectDelayMS = 2500

// fail renders an error as an inline dismissible alert payload. No
// retries happen anywhere; a failed request requires user re-action.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		// The browser went away; nobody is listening.
		c.Abort()
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Message})
		return
	}

	h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
}

// failNotFoundRedirect renders a 404 with a timed-redirect contract:
// the browser shows the message, waits, then navigates to the list.
func (h *Handler) failNotFoundRedirect(c *gin.Context, err error, redirect string) {
	if backend.IsNotFound(err) {
		var apiErr *backend.APIError
		errors.As(err, &apiErr)
		c.JSON(http.StatusNotFound, gin.H{
			"error":             apiErr.Message,
			"redirect":          redirect,
			"redirect_after_ms": redirectDelayMS,
		})
		return
	}
	h.fail(c, err)
}
