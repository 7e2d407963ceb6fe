// Package daterange enumerates calendar days between two inclusive bounds.
package daterange

import (
	"iter"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
)

// Range is an inclusive span of calendar days. Bounds are normalized to UTC midnight.
type Range struct {
	start time.Time
	end   time.Time
}

// New builds a Range. A start after end is a configuration error.
func New(start, end time.Time) (Range, error) {
	s, e := Truncate(start), Truncate(end)
	if s.After(e) {
		return Range{}, pkgerrors.Configurationf("start date %s is after end date %s",
			s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return Range{start: s, end: e}, nil
}

// Start returns the first day of the range.
func (r Range) Start() time.Time { return r.start }

// End returns the last day of the range.
func (r Range) End() time.Time { return r.end }

// Len returns the number of days in the range.
func (r Range) Len() int {
	if r.start.IsZero() && r.end.IsZero() {
		return 0
	}
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

// Days yields every day from start to end inclusive, one calendar day apart.
// The sequence can be ranged over any number of times.
func (r Range) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if r.Len() == 0 {
			return
		}
		for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Truncate drops the time-of-day and location, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date. Unpadded month and day ("2025-4-10") are accepted.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, pkgerrors.Configurationf("date is empty")
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, pkgerrors.Configurationf("invalid date %q, want YYYY-MM-DD", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, pkgerrors.Configurationf("invalid date %q, want YYYY-MM-DD", s)
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so 2025-02-30 would silently become March 2.
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return time.Time{}, pkgerrors.Configurationf("invalid calendar date %q", s)
	}
	return t, nil
}

// ParseRange parses both bounds and builds the Range.
func ParseRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, pkgerrors.Wrap(err, "start date")
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, pkgerrors.Wrap(err, "end date")
	}
	return New(s, e)
}
