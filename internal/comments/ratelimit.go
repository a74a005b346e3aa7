package comments

import (
	"strings"
	"time"
)

// DefaultCooldown is how long an identity must wait between comments.
const DefaultCooldown = 30 * time.Second

// Limiter is the per-identity posting gate. It holds no state: the
// authority for "has this identity posted recently" is the store, so the
// limiter stays correct across multiple server instances. It contributes
// the window constant and the decision rule only.
type Limiter struct {
	Window time.Duration
}

func NewLimiter(window time.Duration) Limiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return Limiter{Window: window}
}

// Since returns the cutoff passed to the store's recent-comment query:
// any comment by the identity at or after this instant blocks posting.
func (l Limiter) Since(now time.Time) time.Time {
	return now.Add(-l.Window)
}

// Allow reports whether an identity whose latest comment was created at
// lastPosted may post again at now. A nil lastPosted means no prior
// comment inside the window.
func (l Limiter) Allow(lastPosted *time.Time, now time.Time) bool {
	if lastPosted == nil {
		return true
	}
	return lastPosted.Before(l.Since(now))
}

// IdentityKey derives the rate-limit key: the author email when given,
// otherwise the display name.
func IdentityKey(authorEmail, authorName string) string {
	if e := strings.TrimSpace(strings.ToLower(authorEmail)); e != "" {
		return e
	}
	return strings.TrimSpace(authorName)
}
