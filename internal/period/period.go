// Package period resolves calendar months and named time windows in a
// user's timezone into absolute UTC boundaries. Expenses are stored as UTC
// instants, so every monthly or daily bucket must be computed against the
// user's local calendar, not the server's.
package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth reports a month string that does not parse as YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month")

// monthLayout is the wire format for months ("2026-03").
const monthLayout = "2006-01"

// Window is a half-open UTC interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Month is a calendar month, independent of any timezone until bounds are
// requested.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the calendar month containing t in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	local := t.In(loc)
	return Month{Year: local.Year(), Month: local.Month()}
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Prev returns the immediately preceding calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Bounds returns the UTC window covering the month as observed in loc:
// from local midnight on the 1st to local midnight on the 1st of the next
// month. time.Date normalizes month 13, so December rolls over cleanly.
func (m Month) Bounds(loc *time.Location) Window {
	from := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	to := time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, loc)
	return Window{From: from.UTC(), To: to.UTC()}
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayOf returns the 1-based day of month of t as observed in loc, for
// bucketing a UTC instant into the local daily series.
func DayOf(t time.Time, loc *time.Location) int {
	return t.In(loc).Day()
}

// ThisMonth returns the UTC window of the month containing now in loc.
func ThisMonth(now time.Time, loc *time.Location) Window {
	return MonthOf(now, loc).Bounds(loc)
}

// LastMonth returns the UTC window of the month before the one containing
// now in loc.
func LastMonth(now time.Time, loc *time.Location) Window {
	return MonthOf(now, loc).Prev().Bounds(loc)
}

// Last7Days returns the UTC window covering today and the six local days
// before it: from local midnight six days ago to local midnight tomorrow.
func Last7Days(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()-6, 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return Window{From: start.UTC(), To: end.UTC()}
}

// LoadLocation resolves an IANA timezone name, treating the empty string as
// UTC. Unknown names return an error rather than silently falling back.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
