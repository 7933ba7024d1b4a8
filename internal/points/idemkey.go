package points

import (
	"strings"
	"time"
)

// MakeIdemKey builds a deterministic idempotency reference for a logical
// earning event, e.g. MakeIdemKey("star-catcher", "level-3"). Repeated calls
// with the same inputs always produce the same key, so retries of the same
// event collapse to one ledger effect.
func MakeIdemKey(subject, segment string) string {
	return normalizeKeyPart(subject) + ":" + normalizeKeyPart(segment)
}

// MakeDailyIdemKey is the day-scoped form for events that may legitimately
// repeat on different days (one award per game segment per day).
func MakeDailyIdemKey(game, segment string, day time.Time) string {
	return MakeIdemKey(game, segment) + ":" + day.UTC().Format("2006-01-02")
}

func normalizeKeyPart(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	return strings.Join(strings.Fields(p), "-")
}
