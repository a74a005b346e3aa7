package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTitle is returned when a title contains no usable characters.
// Slugs are never empty, so such titles are rejected before allocation.
var ErrInvalidTitle = errors.New("title must contain at least one alphanumeric character")

// ErrSlugConflict is returned when no free slug was found. A single lost
// race against a concurrent writer is retried once by the caller; hitting
// the probe bound means the store is in a state worth surfacing, not
// spinning against.
var ErrSlugConflict = errors.New("could not allocate a unique slug")

const maxSlugProbes = 10000

// SlugExistsFunc reports whether slug is already taken by a record other
// than excludeID. excludeID is empty on create.
type SlugExistsFunc func(ctx context.Context, slug, excludeID string) (bool, error)

// Slugify derives the base slug for a title: lowercase, ASCII letters and
// digits kept, every other run collapsed to a single dash, dashes trimmed.
func Slugify(title string) string {
	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))

	prevDash := false
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash && b.Len() > 0 {
			b.WriteRune('-')
			prevDash = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// AllocateSlug probes for the first free slug in the deterministic sequence
// base, base-1, base-2, … against the existence check. Repeated titles get
// monotonically increasing suffixes with no gaps and no reuse.
func AllocateSlug(ctx context.Context, title, excludeID string, exists SlugExistsFunc) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", ErrInvalidTitle
	}

	slug := base
	for i := 0; i < maxSlugProbes; i++ {
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i+1)
	}

	return "", ErrSlugConflict
}
