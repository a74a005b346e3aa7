package reviews

import (
	"time"

	"kayinbooks/pkg/models"
)

// ApplyStatusChange computes the status and publication timestamp that
// result from a status-changing update. It is a pure function; the caller
// persists the two fields.
//
// Rules:
//   - draft -> published stamps publishedAt with now, but only if the
//     review has never been published before. Re-publishing keeps the
//     original timestamp.
//   - published -> draft (unpublish) keeps publishedAt, preserving when
//     the review first went live even while hidden.
//   - an empty or unknown requested status leaves everything unchanged.
func ApplyStatusChange(prevStatus string, prevPublishedAt *time.Time, requested string, now time.Time) (string, *time.Time) {
	if requested != models.StatusDraft && requested != models.StatusPublished {
		return prevStatus, prevPublishedAt
	}

	publishedAt := prevPublishedAt
	if requested == models.StatusPublished && publishedAt == nil {
		t := now
		publishedAt = &t
	}

	return requested, publishedAt
}
