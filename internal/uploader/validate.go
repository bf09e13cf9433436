package uploader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects the allow-list and size ceiling for an upload.
type Kind int

const (
	KindGalleryImage Kind = iota
	KindDocument
	KindProgressMedia
	KindProfilePicture
)

// MaxImageSize caps gallery and profile images at 5 MB.
const MaxImageSize = 5 << 20

// MaxDocumentSize caps document attachments at 20 MB.
const MaxDocumentSize = 20 << 20

// MaxMediaSize caps progress videos at 100 MB.
const MaxMediaSize = 100 << 20

var allowedExts = map[Kind]map[string]bool{
	KindGalleryImage: {
		".jpg": true, ".jpeg": true, ".png": true,
	},
	KindProfilePicture: {
		".jpg": true, ".jpeg": true, ".png": true,
	},
	KindDocument: {
		".pdf": true, ".doc": true, ".docx": true,
		".jpg": true, ".jpeg": true, ".png": true,
	},
	KindProgressMedia: {
		".jpg": true, ".jpeg": true, ".png": true, ".mp4": true,
	},
}

var sizeLimits = map[Kind]int64{
	KindGalleryImage:   MaxImageSize,
	KindProfilePicture: MaxImageSize,
	KindDocument:       MaxDocumentSize,
	KindProgressMedia:  MaxMediaSize,
}

// DocumentType categorizes a document attachment by extension for the
// backend's documentType field.
func DocumentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".doc", ".docx":
		return "document"
	case ".jpg", ".jpeg", ".png":
		return "image"
	default:
		return "other"
	}
}

// Validate checks a user-selected file against the allow-list and size
// ceiling for its kind. A failed check rejects only this file; callers
// continue with the rest of the batch.
func Validate(kind Kind, filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[kind][ext] {
		return fmt.Errorf("%s: file type %q is not allowed", filename, ext)
	}
	if limit := sizeLimits[kind]; size > limit {
		return fmt.Errorf("%s: file exceeds the %d MB limit", filename, limit>>20)
	}
	return nil
}
