package reviews

import (
	"testing"
	"time"

	"kayinbooks/pkg/models"
)

func TestApplyStatusChange(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)

	t.Run("first publish stamps timestamp", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusDraft, nil, models.StatusPublished, t0)
		if status != models.StatusPublished {
			t.Errorf("status = %q, want published", status)
		}
		if publishedAt == nil || !publishedAt.Equal(t0) {
			t.Errorf("publishedAt = %v, want %v", publishedAt, t0)
		}
	})

	t.Run("republish keeps original timestamp", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusPublished, &t0, models.StatusPublished, t1)
		if status != models.StatusPublished {
			t.Errorf("status = %q, want published", status)
		}
		if publishedAt == nil || !publishedAt.Equal(t0) {
			t.Errorf("publishedAt = %v, want original %v", publishedAt, t0)
		}
	})

	t.Run("unpublish keeps timestamp", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusPublished, &t0, models.StatusDraft, t1)
		if status != models.StatusDraft {
			t.Errorf("status = %q, want draft", status)
		}
		if publishedAt == nil || !publishedAt.Equal(t0) {
			t.Errorf("publishedAt = %v, want preserved %v", publishedAt, t0)
		}
	})

	t.Run("unpublish then republish keeps first timestamp", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusPublished, &t0, models.StatusDraft, t1)
		status, publishedAt = ApplyStatusChange(status, publishedAt, models.StatusPublished, t2)
		if status != models.StatusPublished {
			t.Errorf("status = %q, want published", status)
		}
		if publishedAt == nil || !publishedAt.Equal(t0) {
			t.Errorf("publishedAt = %v, want first publish %v", publishedAt, t0)
		}
	})

	t.Run("unknown status is a no-op", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusDraft, nil, "archived", t0)
		if status != models.StatusDraft || publishedAt != nil {
			t.Errorf("got (%q, %v), want (draft, nil)", status, publishedAt)
		}
	})

	t.Run("draft stays unstamped", func(t *testing.T) {
		status, publishedAt := ApplyStatusChange(models.StatusDraft, nil, models.StatusDraft, t0)
		if status != models.StatusDraft || publishedAt != nil {
			t.Errorf("got (%q, %v), want (draft, nil)", status, publishedAt)
		}
	})
}
