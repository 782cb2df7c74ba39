package csvio

import (
	"strconv"
	"strings"
	"time"
)

const (
	MinPriority     = 1
	MaxPriority     = 100
	DefaultPriority = MaxPriority

	// unixEpochJulianDay is the Julian day number of 1970-01-01.
	unixEpochJulianDay = 2440588
)

// Simplify trims s and collapses every internal run of whitespace into a
// single space.
func Simplify(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JulianDay returns the Julian day number of t's calendar date in t's location.
func JulianDay(t time.Time) int64 {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return days + unixEpochJulianDay
}

// parsePriority converts a priority field and clamps it to [MinPriority, MaxPriority].
// Values outside the 32-bit range are parse failures. On failure it returns
// DefaultPriority together with the parse error.
func parsePriority(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return DefaultPriority, err
	}
	return clampPriority(int(n)), nil
}

func clampPriority(n int) int {
	return max(MinPriority, min(n, MaxPriority))
}
