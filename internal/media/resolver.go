package media

import (
	"net/url"
	"path"
	"strings"
)

// Resolver maps relative storage paths returned by the backend into
// absolute URLs the browser can load.
type Resolver struct {
	origin string
}

// NewResolver derives the media origin from the API base URL by
// stripping a trailing "/api" prefix segment, e.g.
// "https://api.example.org/api" -> "https://api.example.org".
func NewResolver(apiBaseURL string) *Resolver {
	origin := strings.TrimRight(apiBaseURL, "/")
	origin = strings.TrimSuffix(origin, "/api")
	return &Resolver{origin: origin}
}

// Resolve returns an absolute URL for a possibly-relative media path.
// Empty input yields an empty string; inputs that already carry an
// http(s) scheme are returned unchanged. No reachability validation is
// done here; a broken path simply fails to load in the browser.
func (r *Resolver) Resolve(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return r.origin + "/" + strings.TrimLeft(p, "/")
}

// Origin returns the resolved media origin.
func (r *Resolver) Origin() string {
	return r.origin
}

// DownloadName suggests a filename for a media URL or path, used by the
// lightbox download action.
func DownloadName(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	name := path.Base(ref)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
