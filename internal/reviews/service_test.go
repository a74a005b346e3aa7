package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"

	"kayinbooks/pkg/models"
)

var uniqueErr = sqlite3.Error{
	Code:         sqlite3.ErrConstraint,
	ExtendedCode: sqlite3.ErrConstraintUnique,
}

// fakeStore is an in-memory Store with an optional slug-race injection:
// when raceSlug is set, the first insert attempt for that slug fails with
// a unique violation and marks the slug as taken, as if a concurrent
// writer had won the race between the existence check and the insert.
type fakeStore struct {
	byID     map[string]*models.Review
	slugs    map[string]string
	raceSlug string
	raced    bool
	inserts  int
	updates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:  map[string]*models.Review{},
		slugs: map[string]string{},
	}
}

func (s *fakeStore) Insert(_ context.Context, rev *models.Review) error {
	s.inserts++
	if rev.Slug == s.raceSlug && !s.raced {
		s.raced = true
		s.slugs[rev.Slug] = "ghost"
		return uniqueErr
	}
	if _, taken := s.slugs[rev.Slug]; taken {
		return uniqueErr
	}
	cp := *rev
	s.byID[rev.ID] = &cp
	s.slugs[rev.Slug] = rev.ID
	return nil
}

func (s *fakeStore) Update(_ context.Context, rev *models.Review) error {
	s.updates++
	if owner, taken := s.slugs[rev.Slug]; taken && owner != rev.ID {
		return uniqueErr
	}
	prev := s.byID[rev.ID]
	if prev != nil && prev.Slug != rev.Slug {
		delete(s.slugs, prev.Slug)
	}
	cp := *rev
	s.byID[rev.ID] = &cp
	s.slugs[rev.Slug] = rev.ID
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Review, error) {
	rev, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rev
	return &cp, nil
}

func (s *fakeStore) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	owner, ok := s.slugs[slug]
	if !ok {
		return false, nil
	}
	return owner != excludeID || excludeID == "", nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		Title:     "Circe",
		Authors:   []string{"Madeline Miller"},
		CoverURL:  "https://covers.example.com/circe.jpg",
		Rating:    4.5,
		FinalText: "A retelling worth reading twice.",
	}
}

func TestCreateReview_Draft(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rev, err := CreateReview(context.Background(), store, validCreateInput(), now)
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rev.Slug != "circe" {
		t.Errorf("slug = %q, want %q", rev.Slug, "circe")
	}
	if rev.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", rev.Status)
	}
	if rev.PublishedAt != nil {
		t.Errorf("publishedAt = %v, want nil for draft", rev.PublishedAt)
	}
	if rev.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestCreateReview_PublishedImmediately(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	in := validCreateInput()
	in.Status = models.StatusPublished

	rev, err := CreateReview(context.Background(), store, in, now)
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rev.Status != models.StatusPublished {
		t.Errorf("status = %q, want published", rev.Status)
	}
	if rev.PublishedAt == nil || !rev.PublishedAt.Equal(now) {
		t.Errorf("publishedAt = %v, want %v", rev.PublishedAt, now)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "  " }},
		{"missing authors", func(in *CreateInput) { in.Authors = nil }},
		{"missing cover", func(in *CreateInput) { in.CoverURL = "" }},
		{"missing final text", func(in *CreateInput) { in.FinalText = "" }},
		{"rating too low", func(in *CreateInput) { in.Rating = 0.5 }},
		{"rating too high", func(in *CreateInput) { in.Rating = 5.1 }},
		{"bad status", func(in *CreateInput) { in.Status = "archived" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)

			_, err := CreateReview(context.Background(), newFakeStore(), in, time.Now())
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("got %v, want *InputError", err)
			}
		})
	}
}

func TestCreateReview_SlugSequence(t *testing.T) {
	store := newFakeStore()
	now := time.Now()

	want := []string{"circe", "circe-1", "circe-2"}
	for i, w := range want {
		rev, err := CreateReview(context.Background(), store, validCreateInput(), now)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if rev.Slug != w {
			t.Errorf("create %d slug = %q, want %q", i, rev.Slug, w)
		}
	}
}

func TestCreateReview_RetriesOnceOnLostRace(t *testing.T) {
	store := newFakeStore()
	store.raceSlug = "circe"

	rev, err := CreateReview(context.Background(), store, validCreateInput(), time.Now())
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rev.Slug != "circe-1" {
		t.Errorf("slug = %q, want %q after lost race", rev.Slug, "circe-1")
	}
	if store.inserts != 2 {
		t.Errorf("inserts = %d, want 2", store.inserts)
	}
}

func TestUpdateReview_NotFound(t *testing.T) {
	_, err := UpdateReview(context.Background(), newFakeStore(), "nope", UpdateInput{}, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateReview_TitleChangeReallocatesSlug(t *testing.T) {
	store := newFakeStore()
	rev, err := CreateReview(context.Background(), store, validCreateInput(), time.Now())
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	newTitle := "Circe: Revisited"
	updated, err := UpdateReview(context.Background(), store, rev.ID, UpdateInput{Title: &newTitle}, time.Now())
	if err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if updated.Slug != "circe-revisited" {
		t.Errorf("slug = %q, want %q", updated.Slug, "circe-revisited")
	}
}

func TestUpdateReview_SameTitleKeepsSlug(t *testing.T) {
	store := newFakeStore()
	rev, err := CreateReview(context.Background(), store, validCreateInput(), time.Now())
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	rating := 5.0
	updated, err := UpdateReview(context.Background(), store, rev.ID, UpdateInput{Rating: &rating}, time.Now())
	if err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if updated.Slug != rev.Slug {
		t.Errorf("slug changed from %q to %q on a rating-only patch", rev.Slug, updated.Slug)
	}
	if updated.Rating != 5.0 {
		t.Errorf("rating = %v, want 5.0", updated.Rating)
	}
}

func TestUpdateReview_PublishCycleKeepsFirstTimestamp(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rev, err := CreateReview(ctx, store, validCreateInput(), t0)
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	published := models.StatusPublished
	draft := models.StatusDraft

	// publish
	rev, err = UpdateReview(ctx, store, rev.ID, UpdateInput{Status: &published}, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	firstPublish := t0.Add(time.Hour)
	if rev.PublishedAt == nil || !rev.PublishedAt.Equal(firstPublish) {
		t.Fatalf("publishedAt = %v, want %v", rev.PublishedAt, firstPublish)
	}

	// unpublish, timestamp survives
	rev, err = UpdateReview(ctx, store, rev.ID, UpdateInput{Status: &draft}, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if rev.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", rev.Status)
	}
	if rev.PublishedAt == nil || !rev.PublishedAt.Equal(firstPublish) {
		t.Errorf("publishedAt = %v, want preserved %v", rev.PublishedAt, firstPublish)
	}

	// republish, still the first timestamp
	rev, err = UpdateReview(ctx, store, rev.ID, UpdateInput{Status: &published}, t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if rev.PublishedAt == nil || !rev.PublishedAt.Equal(firstPublish) {
		t.Errorf("publishedAt = %v, want first publish %v", rev.PublishedAt, firstPublish)
	}
}

func TestUpdateReview_Validation(t *testing.T) {
	empty := ""
	badRating := 0.0
	badStatus := "archived"
	noAuthors := []string{}

	tests := []struct {
		name  string
		patch UpdateInput
	}{
		{"empty title", UpdateInput{Title: &empty}},
		{"empty authors", UpdateInput{Authors: &noAuthors}},
		{"empty cover", UpdateInput{CoverURL: &empty}},
		{"empty final text", UpdateInput{FinalText: &empty}},
		{"bad rating", UpdateInput{Rating: &badRating}},
		{"bad status", UpdateInput{Status: &badStatus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			rev, err := CreateReview(context.Background(), store, validCreateInput(), time.Now())
			if err != nil {
				t.Fatalf("CreateReview: %v", err)
			}

			_, err = UpdateReview(context.Background(), store, rev.ID, tt.patch, time.Now())
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("got %v, want *InputError", err)
			}
		})
	}
}
