package engine

import (
	"strings"
	"time"
)

// SanitizeTitle turns a task title into an id-safe slug: lowercase, runs of
// anything non-alphanumeric collapse to a single dash.
func SanitizeTitle(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ConfirmationID builds the deterministic per-day id. It is an idempotency
// key, not a surrogate key: a second submission for the same task on the
// same calendar day produces the same id and silently overwrites the first.
func ConfirmationID(title string, day time.Time) string {
	return SanitizeTitle(title) + "_" + day.Format("2006-01-02")
}
