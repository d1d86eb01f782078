// Package dates provides a calendar date value used to pick the target day of a run.
package dates

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time of day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar date of t as seen in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns the calendar date of t as seen in loc.
func In(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Of(t.In(loc))
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Of(t), nil
}

// Yesterday returns the day before now in loc.
func Yesterday(now time.Time, loc *time.Location) Date {
	return In(now, loc).AddDays(-1)
}

// AddDays returns the date n days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return Of(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Midnight returns the first instant of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Format formats d with a time.Format layout.
func (d Date) Format(layout string) string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(layout)
}

// String returns d as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// DaysBetween returns the number of whole calendar days from a to b.
// It is positive when b is after a and ignores daylight saving shifts.
func DaysBetween(a, b Date) int {
	ta := time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, time.UTC)
	tb := time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	return int(tb.Sub(ta).Hours() / 24)
}

// Noon returns midday of d in loc. Used as a reference "now" for a given day.
func (d Date) Noon(loc *time.Location) time.Time {
	return d.Midnight(loc).Add(12 * time.Hour)
}
