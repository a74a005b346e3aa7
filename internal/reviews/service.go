package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kayinbooks/pkg/database"
	"kayinbooks/pkg/models"
)

// ErrNotFound is returned when the review id or slug resolves to nothing.
var ErrNotFound = errors.New("review not found")

// InputError marks caller mistakes (missing or malformed fields) so
// handlers can report 400 instead of 500.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func invalidInput(format string, args ...any) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

// Store is the persistence surface the create/update flows need. *Repo
// implements it; tests substitute an in-memory fake.
type Store interface {
	Insert(ctx context.Context, rev *models.Review) error
	Update(ctx context.Context, rev *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type CreateInput struct {
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	ISBN         string   `json:"isbn"`
	Publisher    string   `json:"publisher"`
	Year         int      `json:"year"`
	CoverURL     string   `json:"cover_url"`
	Rating       float64  `json:"rating"`
	BulletPoints []string `json:"bullet_points"`
	AIDraft      string   `json:"ai_draft"`
	FinalText    string   `json:"final_text"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"`
}

// UpdateInput is a patch: nil fields are left untouched.
type UpdateInput struct {
	Title        *string   `json:"title"`
	Authors      *[]string `json:"authors"`
	ISBN         *string   `json:"isbn"`
	Publisher    *string   `json:"publisher"`
	Year         *int      `json:"year"`
	CoverURL     *string   `json:"cover_url"`
	Rating       *float64  `json:"rating"`
	BulletPoints *[]string `json:"bullet_points"`
	AIDraft      *string   `json:"ai_draft"`
	FinalText    *string   `json:"final_text"`
	Tags         *[]string `json:"tags"`
	Status       *string   `json:"status"`
}

// CreateReview validates input, allocates a slug and inserts the review.
// A lost slug race (unique-constraint failure on insert) triggers exactly
// one re-allocation before giving up with ErrSlugConflict.
func CreateReview(ctx context.Context, store Store, in CreateInput, now time.Time) (*models.Review, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidInput("title is required")
	}
	if len(in.Authors) == 0 {
		return nil, invalidInput("authors are required")
	}
	if strings.TrimSpace(in.CoverURL) == "" {
		return nil, invalidInput("cover_url is required")
	}
	if strings.TrimSpace(in.FinalText) == "" {
		return nil, invalidInput("final_text is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalidInput("rating must be between 1 and 5")
	}

	requested := in.Status
	if requested == "" {
		requested = models.StatusDraft
	}
	if requested != models.StatusDraft && requested != models.StatusPublished {
		return nil, invalidInput("status must be draft or published")
	}

	rev := &models.Review{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Authors:      in.Authors,
		ISBN:         strings.TrimSpace(in.ISBN),
		Publisher:    strings.TrimSpace(in.Publisher),
		Year:         in.Year,
		CoverURL:     strings.TrimSpace(in.CoverURL),
		Rating:       in.Rating,
		BulletPoints: in.BulletPoints,
		AIDraft:      in.AIDraft,
		FinalText:    in.FinalText,
		Tags:         in.Tags,
		CreatedAt:    now,
	}
	rev.Status, rev.PublishedAt = ApplyStatusChange(models.StatusDraft, nil, requested, now)

	// Two attempts: the allocator's check-then-insert is racy, the store's
	// uniqueness constraint is the backstop.
	for attempt := 0; attempt < 2; attempt++ {
		slug, err := AllocateSlug(ctx, rev.Title, "", store.SlugExists)
		if err != nil {
			return nil, err
		}
		rev.Slug = slug

		err = store.Insert(ctx, rev)
		if err == nil {
			return rev, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("insert review: %w", err)
		}
	}

	return nil, ErrSlugConflict
}

// UpdateReview loads the review, applies the patch, reallocates the slug
// when the title changed and runs the publication state machine when the
// status changed.
func UpdateReview(ctx context.Context, store Store, id string, patch UpdateInput, now time.Time) (*models.Review, error) {
	rev, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	if rev == nil {
		return nil, ErrNotFound
	}

	titleChanged := false
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		titleChanged = title != rev.Title
		rev.Title = title
	}
	if patch.Authors != nil {
		if len(*patch.Authors) == 0 {
			return nil, invalidInput("authors cannot be empty")
		}
		rev.Authors = *patch.Authors
	}
	if patch.ISBN != nil {
		rev.ISBN = strings.TrimSpace(*patch.ISBN)
	}
	if patch.Publisher != nil {
		rev.Publisher = strings.TrimSpace(*patch.Publisher)
	}
	if patch.Year != nil {
		rev.Year = *patch.Year
	}
	if patch.CoverURL != nil {
		if strings.TrimSpace(*patch.CoverURL) == "" {
			return nil, invalidInput("cover_url cannot be empty")
		}
		rev.CoverURL = strings.TrimSpace(*patch.CoverURL)
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return nil, invalidInput("rating must be between 1 and 5")
		}
		rev.Rating = *patch.Rating
	}
	if patch.BulletPoints != nil {
		rev.BulletPoints = *patch.BulletPoints
	}
	if patch.AIDraft != nil {
		rev.AIDraft = *patch.AIDraft
	}
	if patch.FinalText != nil {
		if strings.TrimSpace(*patch.FinalText) == "" {
			return nil, invalidInput("final_text cannot be empty")
		}
		rev.FinalText = *patch.FinalText
	}
	if patch.Tags != nil {
		rev.Tags = *patch.Tags
	}
	if patch.Status != nil {
		if *patch.Status != models.StatusDraft && *patch.Status != models.StatusPublished {
			return nil, invalidInput("status must be draft or published")
		}
		rev.Status, rev.PublishedAt = ApplyStatusChange(rev.Status, rev.PublishedAt, *patch.Status, now)
	}

	for attempt := 0; attempt < 2; attempt++ {
		if titleChanged || attempt > 0 {
			slug, err := AllocateSlug(ctx, rev.Title, rev.ID, store.SlugExists)
			if err != nil {
				return nil, err
			}
			rev.Slug = slug
		}

		err = store.Update(ctx, rev)
		if err == nil {
			return rev, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("update review: %w", err)
		}
	}

	return nil, ErrSlugConflict
}
