package draft

import (
	"fmt"

	"sponsorweb/internal/appstatus"
	"sponsorweb/internal/backend"
)

// Draft buffers edits to a student record between "open edit" and an
// explicit save. Gallery and document changes live only here until the
// full projection is PUT to the backend; cancelling discards the lot
// and restores the committed record exactly.
type Draft struct {
	Committed backend.Student `json:"committed"`
	Edited    backend.Student `json:"edited"`
	Dirty     bool            `json:"dirty"`
}

// Open starts editing from the last-fetched record.
func Open(s *backend.Student) *Draft {
	return &Draft{
		Committed: clone(s),
		Edited:    clone(s),
	}
}

// FieldEdits carries the editable scalar fields. Nil pointers leave the
// current draft value alone. AmountRaised is server-computed and never
// editable here.
type FieldEdits struct {
	Name              *string           `json:"name,omitempty"`
	Age               *int              `json:"age,omitempty"`
	Location          *string           `json:"location,omitempty"`
	Story             *string           `json:"story,omitempty"`
	FundingGoal       *float64          `json:"fundingGoal,omitempty"`
	IsVisible         *bool             `json:"isVisible,omitempty"`
	ApplicationStatus *appstatus.Status `json:"applicationStatus,omitempty"`
	ProfileImageURL   *string           `json:"profileImageUrl,omitempty"`
}

// Apply buffers scalar field edits.
func (d *Draft) Apply(e FieldEdits) {
	if e.Name != nil {
		d.Edited.Name = *e.Name
	}
	if e.Age != nil {
		d.Edited.Age = *e.Age
	}
	if e.Location != nil {
		d.Edited.Location = *e.Location
	}
	if e.Story != nil {
		d.Edited.Story = *e.Story
	}
	if e.FundingGoal != nil {
		d.Edited.FundingGoal = *e.FundingGoal
	}
	if e.IsVisible != nil {
		d.Edited.IsVisible = *e.IsVisible
	}
	if e.ApplicationStatus != nil {
		d.Edited.ApplicationStatus = *e.ApplicationStatus
	}
	if e.ProfileImageURL != nil {
		d.Edited.ProfileImageURL = *e.ProfileImageURL
	}
	d.Dirty = true
}

// AppendGallery buffers newly uploaded gallery URLs in display order.
func (d *Draft) AppendGallery(urls ...string) {
	if len(urls) == 0 {
		return
	}
	d.Edited.GalleryImageURLs = append(d.Edited.GalleryImageURLs, urls...)
	d.Dirty = true
}

// RemoveGalleryAt drops one image from the buffered gallery.
func (d *Draft) RemoveGalleryAt(i int) error {
	g := d.Edited.GalleryImageURLs
	if i < 0 || i >= len(g) {
		return fmt.Errorf("gallery index %d out of range", i)
	}
	d.Edited.GalleryImageURLs = append(g[:i], g[i+1:]...)
	d.Dirty = true
	return nil
}

// AddDocument buffers a newly uploaded document.
func (d *Draft) AddDocument(doc backend.Document) {
	d.Edited.Documents = append(d.Edited.Documents, doc)
	d.Dirty = true
}

// Reset throws away buffered edits, restoring the committed record.
func (d *Draft) Reset() {
	d.Edited = clone(&d.Committed)
	d.Dirty = false
}

// Payload is the full editable projection to PUT on save. The backend
// has no partial update, so the whole record goes back.
func (d *Draft) Payload() *backend.Student {
	s := clone(&d.Edited)
	return &s
}

// Commit replaces the committed record with the refetched one after a
// successful save.
func (d *Draft) Commit(refetched *backend.Student) {
	d.Committed = clone(refetched)
	d.Edited = clone(refetched)
	d.Dirty = false
}

func clone(s *backend.Student) backend.Student {
	cp := *s
	cp.GalleryImageURLs = append([]string(nil), s.GalleryImageURLs...)
	cp.Documents = append([]backend.Document(nil), s.Documents...)
	cp.ProgressUpdates = append([]backend.ProgressUpdate(nil), s.ProgressUpdates...)
	return cp
}
