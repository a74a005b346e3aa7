package models

import "time"

// Review status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Review is one book write-up, draft or published.
//
// Slug is unique and derived from the title; it only changes when the title
// does. PublishedAt is set the first time the review goes live and is never
// rewritten afterwards, even across unpublish/re-publish cycles.
type Review struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Authors      []string   `json:"authors"`
	ISBN         string     `json:"isbn,omitempty"`
	Publisher    string     `json:"publisher,omitempty"`
	Year         int        `json:"year,omitempty"`
	CoverURL     string     `json:"cover_url"`
	Rating       float64    `json:"rating"`
	BulletPoints []string   `json:"bullet_points,omitempty"`
	AIDraft      string     `json:"ai_draft,omitempty"`
	FinalText    string     `json:"final_text"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}
