package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for calendar days.
const Layout = "2006-01-02"

var (
	ErrInvalidRange  = errors.New("start date must be before end date")
	ErrInvalidFormat = errors.New("dates must be in YYYY-MM-DD format")
)

// Range is a half-open interval of calendar days [Start, End).
// The end day is excluded so that the checkout day of one stay can be
// the check-in day of the next. Days are timezone-naive and stored as
// UTC midnights.
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range from two timestamps, truncating both to their
// calendar day. A minimum one-night stay is enforced (start < end).
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	if !r.Start.Before(r.End) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	s, err := time.ParseInLocation(Layout, start, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidFormat, start)
	}
	e, err := time.ParseInLocation(Layout, end, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidFormat, end)
	}
	return New(s, e)
}

// Day truncates a timestamp to its calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights covered by the range.
func (r Range) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back ranges (r.End == o.Start) do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// Equal reports whether both ranges cover the same instants. It uses
// time.Time.Equal so values scanned from the database compare equal to
// parsed ones regardless of their location pointer.
func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Contains reports whether the given day is a night of the range.
func (r Range) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Days returns each night of the stay in order, End excluded.
func (r Range) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights())
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r Range) String() string {
	return r.Start.Format(Layout) + "/" + r.End.Format(Layout)
}
