package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"kayinbooks/pkg/models"
)

// ErrNotFound means no catalog source produced a usable record. It is an
// ordinary lookup miss, not a failure.
var ErrNotFound = errors.New("book not found in any catalog")

// ErrInvalidISBN means the caller-supplied identifier was empty after
// stripping separators.
var ErrInvalidISBN = errors.New("isbn must contain at least one alphanumeric character")

// Source is implemented by each external book catalog (Open Library,
// Google Books). Each source fetches its own payload format and maps it
// into BookMetadata.
type Source interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*models.BookMetadata, error)
}

// Resolver queries sources in priority order and returns the first usable
// normalized result. A source failure of any kind (network, timeout,
// malformed payload, not-found) only moves the resolver on to the next
// source; it never propagates to the caller.
type Resolver struct {
	Sources []Source

	log zerolog.Logger
}

func NewResolver(log zerolog.Logger, sources ...Source) *Resolver {
	return &Resolver{Sources: sources, log: log}
}

// Resolve looks up a raw ISBN string, which may still contain hyphens or
// spaces. The first source returning a record with a non-empty title wins.
func (r *Resolver) Resolve(ctx context.Context, isbn string) (*models.BookMetadata, error) {
	clean := CleanISBN(isbn)
	if clean == "" {
		return nil, ErrInvalidISBN
	}

	for _, src := range r.Sources {
		meta, err := src.Lookup(ctx, clean)
		if err != nil {
			r.log.Warn().Err(err).Str("source", src.Name()).Str("isbn", clean).
				Msg("catalog source failed, trying next")
			continue
		}
		if meta == nil || strings.TrimSpace(meta.Title) == "" {
			continue
		}
		meta.Source = src.Name()
		meta.ISBN = clean
		return meta, nil
	}

	return nil, ErrNotFound
}

// CleanISBN strips separators, keeping letters and digits. ISBN-10 check
// digits may be the letter X, so letters stay.
func CleanISBN(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pickCover returns the first non-empty candidate, rewritten to https.
// Candidates must be passed best-quality first. With no candidates at all
// the placeholder is used.
func pickCover(placeholder string, candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" {
			return secureURL(c)
		}
	}
	return placeholder
}

func secureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// parseYearToken extracts the first 4-digit run from a free-form date
// string ("1997", "May 1997", "1997-05-01"). Unparsable dates yield 0.
func parseYearToken(s string) int {
	run := 0
	year := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			run++
			year = year*10 + int(s[i]-'0')
			continue
		}
		if run == 4 {
			return year
		}
		run = 0
		year = 0
	}
	return 0
}
