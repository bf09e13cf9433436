package gallery

// DisplayCap is how many tiles a profile gallery shows before
// collapsing the remainder into a single overflow tile.
const DisplayCap = 6

// Tile is one clickable image in the gallery grid. Index is the
// position in the full image sequence, which the lightbox opens at.
type Tile struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// Page is the bounded grid rendered on a profile.
type Page struct {
	Tiles []Tile `json:"tiles"`
	// Overflow is non-nil when more images exist than the cap allows.
	// Clicking it opens the lightbox at Overflow.Index.
	Overflow *Overflow `json:"overflow,omitempty"`
	Total    int       `json:"total"`
}

// Overflow is the "+N more" tile.
type Overflow struct {
	Remaining int `json:"remaining"`
	Index     int `json:"index"`
}

// Paginate windows an ordered image sequence to at most limit tiles.
// An empty sequence yields an empty page; callers render nothing.
func Paginate(urls []string, limit int) Page {
	if limit <= 0 {
		limit = DisplayCap
	}
	p := Page{Total: len(urls)}
	n := len(urls)
	shown := n
	if shown > limit {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		p.Tiles = append(p.Tiles, Tile{Index: i, URL: urls[i]})
	}
	if n > limit {
		p.Overflow = &Overflow{Remaining: n - limit, Index: limit}
	}
	return p
}

// Next returns the lightbox index after i, wrapping past the end.
func Next(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i + 1) % n
}

// Prev returns the lightbox index before i, wrapping past the start.
func Prev(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i - 1 + n) % n
}

// Navigable reports whether next/previous controls are shown.
// Single-image galleries disable them.
func Navigable(n int) bool {
	return n > 1
}
