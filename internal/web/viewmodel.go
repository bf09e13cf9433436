package web

import (
	"math"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/gallery"
	"sponsorweb/internal/media"
)

// StudentCard is the list/roster projection of a student.
type StudentCard struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	Location        string  `json:"location"`
	ProfileImageURL string  `json:"profileImageUrl"`
	FundingGoal     float64 `json:"fundingGoal"`
	AmountRaised    float64 `json:"amountRaised"`
	FundingPercent  int     `json:"fundingPercent"`
	StatusValue     int     `json:"statusValue"`
	StatusLabel     string  `json:"statusLabel"`
	StatusColor     string  `json:"statusColor"`
	IsVisible       bool    `json:"isVisible"`
}

// StudentDetail is the full profile view model.
type StudentDetail struct {
	StudentCard
	Story     string             `json:"story"`
	Gallery   gallery.Page       `json:"gallery"`
	Documents []DocumentVM       `json:"documents"`
	Progress  []ProgressUpdateVM `json:"progressUpdates,omitempty"`
}

// DocumentVM is a document row with its download URL resolved.
type DocumentVM struct {
	FileName     string `json:"fileName"`
	DocumentType string `json:"documentType"`
	FileSize     int64  `json:"fileSize"`
	DownloadURL  string `json:"downloadUrl"`
}

// ProgressUpdateVM is a milestone post with media URLs resolved.
type ProgressUpdateVM struct {
	backend.ProgressUpdate
	PhotoURL string `json:"photoUrl,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// LightboxVM is the modal viewer state for one gallery index.
type LightboxVM struct {
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	URL          string `json:"url"`
	DownloadURL  string `json:"downloadUrl"`
	DownloadName string `json:"downloadName"`
	Navigable    bool   `json:"navigable"`
	NextIndex    int    `json:"nextIndex"`
	PrevIndex    int    `json:"prevIndex"`
}

// FundingPercent is the display percentage, always clamped to [0,100].
// A zero or negative goal shows as 0 rather than dividing by zero.
func FundingPercent(raised, goal float64) int {
	if goal <= 0 || raised <= 0 {
		return 0
	}
	pct := math.Round(raised / goal * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func (h *Handler) card(s *backend.Student) StudentCard {
	return StudentCard{
		ID:              s.ID,
		Name:            s.Name,
		Age:             s.Age,
		Location:        s.Location,
		ProfileImageURL: h.resolver.Resolve(s.ProfileImageURL),
		FundingGoal:     s.FundingGoal,
		AmountRaised:    s.AmountRaised,
		FundingPercent:  FundingPercent(s.AmountRaised, s.FundingGoal),
		StatusValue:     int(s.ApplicationStatus),
		StatusLabel:     s.ApplicationStatus.Label(),
		StatusColor:     s.ApplicationStatus.Color(),
		IsVisible:       s.IsVisible,
	}
}

func (h *Handler) detail(s *backend.Student) StudentDetail {
	resolved := make([]string, len(s.GalleryImageURLs))
	for i, u := range s.GalleryImageURLs {
		resolved[i] = h.resolver.Resolve(u)
	}

	docs := make([]DocumentVM, 0, len(s.Documents))
	for _, d := range s.Documents {
		docs = append(docs, DocumentVM{
			FileName:     d.FileName,
			DocumentType: d.DocumentType,
			FileSize:     d.FileSize,
			DownloadURL:  h.resolver.Resolve(d.FilePath),
		})
	}

	var progress []ProgressUpdateVM
	for _, p := range s.ProgressUpdates {
		progress = append(progress, h.progressVM(p))
	}

	return StudentDetail{
		StudentCard: h.card(s),
		Story:       s.Story,
		Gallery:     gallery.Paginate(resolved, gallery.DisplayCap),
		Documents:   docs,
		Progress:    progress,
	}
}

func (h *Handler) progressVM(p backend.ProgressUpdate) ProgressUpdateVM {
	return ProgressUpdateVM{
		ProgressUpdate: p,
		PhotoURL:       h.resolver.Resolve(p.PhotoURL),
		VideoURL:       h.resolver.Resolve(p.VideoURL),
	}
}

func (h *Handler) lightbox(urls []string, index int) LightboxVM {
	n := len(urls)
	resolved := h.resolver.Resolve(urls[index])
	return LightboxVM{
		Index:        index,
		Total:        n,
		URL:          resolved,
		DownloadURL:  resolved,
		DownloadName: media.DownloadName(urls[index]),
		Navigable:    gallery.Navigable(n),
		NextIndex:    gallery.Next(index, n),
		PrevIndex:    gallery.Prev(index, n),
	}
}
