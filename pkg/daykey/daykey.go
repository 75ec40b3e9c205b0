// Package daykey works with calendar days expressed as fixed-width YYYY-MM-DD
// strings. Keys never carry a time of day or a zone, so range math stays
// stable regardless of where the caller runs. Conversions to instants happen
// only at storage boundaries, where a key maps to midday UTC.
package daykey

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the canonical key format.
const Layout = "2006-01-02"

// MaxRangeDays bounds EachInclusive so a malformed request cannot allocate
// an unbounded slice.
const MaxRangeDays = 3660

var (
	keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// ErrInvalidKey is returned for keys that are malformed or name a day
	// that does not exist on the calendar.
	ErrInvalidKey = errors.New("invalid day key")
	// ErrRangeTooLarge is returned when a range exceeds MaxRangeDays.
	ErrRangeTooLarge = errors.New("day key range too large")
)

// Valid reports whether key is well formed and names a real calendar day.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// Parse returns the UTC midnight instant for key.
func Parse(key string) (time.Time, error) {
	if !keyPattern.MatchString(key) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if t.Format(Layout) != key {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return t, nil
}

// Compare orders two keys. Fixed width and zero padding make lexicographic
// order equal to calendar order.
func Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AddDays shifts key by n calendar days (n may be negative).
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Next returns the day after key.
func Next(key string) (string, error) {
	return AddDays(key, 1)
}

// Prev returns the day before key.
func Prev(key string) (string, error) {
	return AddDays(key, -1)
}

// EachInclusive lists every key from start through end. A reversed range
// yields an empty slice.
func EachInclusive(start, end string) ([]string, error) {
	from, err := Parse(start)
	if err != nil {
		return nil, err
	}
	to, err := Parse(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return []string{}, nil
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days", ErrRangeTooLarge, days)
	}
	keys := make([]string, 0, days)
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		keys = append(keys, cur.Format(Layout))
	}
	return keys, nil
}

// Nights lists the occupied nights of a half-open stay [checkIn, checkOut).
// The checkout day itself is excluded.
func Nights(checkIn, checkOut string) ([]string, error) {
	last, err := Prev(checkOut)
	if err != nil {
		return nil, err
	}
	if _, err := Parse(checkIn); err != nil {
		return nil, err
	}
	return EachInclusive(checkIn, last)
}

// NightCount returns the number of nights between checkIn and checkOut.
func NightCount(checkIn, checkOut string) (int, error) {
	from, err := Parse(checkIn)
	if err != nil {
		return 0, err
	}
	to, err := Parse(checkOut)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}

// MiddayUTC returns the stored instant for key. Noon UTC stays on the same
// calendar day for every offset between -11:59 and +11:59.
func MiddayUTC(key string) (time.Time, error) {
	t, err := Parse(key)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(12 * time.Hour), nil
}

// FromInstant reads the key back from a stored midday-UTC instant.
func FromInstant(t time.Time) string {
	return t.UTC().Format(Layout)
}

// FromTime returns the key for the wall-clock day of t in loc. A nil loc
// means UTC.
func FromTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}

// Contains reports whether key lies within the inclusive range [start, end].
func Contains(start, end, key string) bool {
	return Compare(start, key) <= 0 && Compare(key, end) <= 0
}
