package reviews

import (
	"context"
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Circe", "circe"},
		{"spaces become dashes", "The Song of Achilles", "the-song-of-achilles"},
		{"punctuation collapsed", "Jonathan Strange & Mr Norrell", "jonathan-strange-mr-norrell"},
		{"leading and trailing junk", "  --Piranesi!  ", "piranesi"},
		{"digits kept", "1984", "1984"},
		{"consecutive separators", "a  -  b", "a-b"},
		{"non-ascii dropped", "Café Été", "caf-t"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

// existsFromSet builds a SlugExistsFunc over a fixed set of taken slugs.
func existsFromSet(taken map[string]string) SlugExistsFunc {
	return func(_ context.Context, slug, excludeID string) (bool, error) {
		owner, ok := taken[slug]
		if !ok {
			return false, nil
		}
		return owner != excludeID || excludeID == "", nil
	}
}

func TestAllocateSlug_Sequence(t *testing.T) {
	taken := map[string]string{}
	exists := existsFromSet(taken)

	// repeated allocation of the same title yields a strictly increasing
	// suffix sequence with no gaps
	want := []string{"circe", "circe-1", "circe-2", "circe-3"}
	for i, w := range want {
		got, err := AllocateSlug(context.Background(), "Circe", "", exists)
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if got != w {
			t.Errorf("allocation %d = %q, want %q", i, got, w)
		}
		taken[got] = "owner"
	}
}

func TestAllocateSlug_ExcludesOwnRecord(t *testing.T) {
	taken := map[string]string{"circe": "review-1"}
	exists := existsFromSet(taken)

	// updating review-1 without changing the title keeps its own slug
	got, err := AllocateSlug(context.Background(), "Circe", "review-1", exists)
	if err != nil {
		t.Fatalf("AllocateSlug: %v", err)
	}
	if got != "circe" {
		t.Errorf("got %q, want %q", got, "circe")
	}

	// a different record has to take the suffix
	got, err = AllocateSlug(context.Background(), "Circe", "review-2", exists)
	if err != nil {
		t.Fatalf("AllocateSlug: %v", err)
	}
	if got != "circe-1" {
		t.Errorf("got %q, want %q", got, "circe-1")
	}
}

func TestAllocateSlug_EmptyTitle(t *testing.T) {
	_, err := AllocateSlug(context.Background(), "!!!", "", existsFromSet(nil))
	if !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("got %v, want ErrInvalidTitle", err)
	}
}

func TestAllocateSlug_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	exists := func(context.Context, string, string) (bool, error) { return false, boom }

	_, err := AllocateSlug(context.Background(), "Circe", "", exists)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped store error", err)
	}
}
