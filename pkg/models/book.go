package models

// BookMetadata is the normalized result of one external catalog lookup.
//
// All catalog sources are mapped into this structure first; it is transient
// and never persisted as-is. Source records which provider produced it
// (e.g. "openlibrary", "googlebooks").
type BookMetadata struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	ISBN        string   `json:"isbn,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Year        int      `json:"year,omitempty"`
	CoverURL    string   `json:"cover_url"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source"`
}
