package models

import "time"

// Comment is one flat discussion entry attached to a review.
// ParentID is empty for top-level comments. Comments are append-only.
type Comment struct {
	ID          string    `json:"id"`
	ReviewID    string    `json:"review_id"`
	ParentID    string    `json:"parent_id,omitempty"`
	Body        string    `json:"body"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ThreadedComment is a comment plus its nested replies, as rendered
// on a review page. Replies keep the same relative order as the flat
// input (newest first).
type ThreadedComment struct {
	Comment
	Replies []*ThreadedComment `json:"replies"`
}
