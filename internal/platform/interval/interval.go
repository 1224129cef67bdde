// Package interval provides minute-of-day arithmetic and half-open interval
// overlap tests for the scheduling engine. All session times are clock times
// ("HH:MM") scoped to a calendar date; the date itself carries the timezone.
package interval

import (
	"fmt"
	"strings"
	"time"
)

// MinuteOfDay parses a 24h "HH:MM" clock time and returns minutes since
// midnight. "00:00" maps to 0 and "23:59" to 1439.
func MinuteOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", hhmm)
	}
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", hhmm)
	}
	return h*60 + m, nil
}

// MustMinuteOfDay is MinuteOfDay for input already validated upstream.
// It panics on malformed input; the format check belongs to whoever
// accepted the string.
func MustMinuteOfDay(hhmm string) int {
	m, err := MinuteOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return m
}

// Overlaps reports whether two half-open intervals [startA, endA) and
// [startB, endB) intersect. Adjacent intervals sharing an endpoint do not
// overlap; identical intervals do.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// OverlapsClock is Overlaps over "HH:MM" strings.
func OverlapsClock(startA, endA, startB, endB string) bool {
	return Overlaps(
		MustMinuteOfDay(startA), MustMinuteOfDay(endA),
		MustMinuteOfDay(startB), MustMinuteOfDay(endB),
	)
}

// Contains reports whether [start, end) fully contains [innerStart, innerEnd).
func Contains(start, end, innerStart, innerEnd int) bool {
	return innerStart >= start && innerEnd <= end
}

// Weekday returns the lowercase English weekday name ("monday".."sunday")
// for the given timestamp, evaluated in the timestamp's own location.
//
// Callers holding a bare YYYY-MM-DD date must parse it with
// time.ParseInLocation in the clinic's timezone before calling Weekday.
// Parsing a bare date as UTC and evaluating it in a different location can
// shift the result by a day.
func Weekday(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
