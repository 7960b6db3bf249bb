// Package timegrid defines the discrete slot lattice the scheduler works on.
// All functions are pure and total over any valid date.
package timegrid

import (
	"time"
)

// DefaultInterval is the width of one slot in minutes.
const DefaultInterval = 5

// Grid describes the daily active window on top of the slot lattice.
// Times are minutes since midnight.
type Grid struct {
	WeekdayStart int // e.g. 16*60+15
	WeekendStart int // e.g. 9*60
	NightCutoff  int // e.g. 20*60+45
	Interval     int // slot width in minutes
}

// Default returns the grid with the stock active window:
// weekdays start 16:15, weekends 09:00, nightly cutoff 20:45,
// 5-minute slots.
func Default() Grid {
	return Grid{
		WeekdayStart: 16*60 + 15,
		WeekendStart: 9 * 60,
		NightCutoff:  20*60 + 45,
		Interval:     DefaultInterval,
	}
}

// IsWeekend returns true for Saturday and Sunday.
func IsWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// DayStart returns the first schedulable instant on the date's own calendar day.
func (g Grid) DayStart(date time.Time) time.Time {
	start := g.WeekdayStart
	if IsWeekend(date) {
		start = g.WeekendStart
	}
	return atMinutes(date, start)
}

// DayEnd returns the exclusive end of the active window on the date's day,
// the nightly cutoff.
func (g Grid) DayEnd(date time.Time) time.Time {
	return atMinutes(date, g.NightCutoff)
}

// InWindow reports whether t lies within [DayStart, DayEnd) of t's own
// calendar date. Multi-day scans resolve the window per slot date, not per
// scheduling day.
func (g Grid) InWindow(t time.Time) bool {
	return !t.Before(g.DayStart(t)) && t.Before(g.DayEnd(t))
}

// RoundUp rounds a timestamp forward to the next slot boundary.
// Timestamps already on a boundary are returned unchanged (sub-minute
// precision stripped).
func (g Grid) RoundUp(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	rem := t.Minute() % g.Interval
	if rem == 0 {
		return t
	}
	return t.Add(time.Duration(g.Interval-rem) * time.Minute)
}

// Blocks returns how many contiguous slots a task of the given duration
// consumes: ceil(minutes/interval), minimum one.
func (g Grid) Blocks(minutes int) int {
	if minutes <= 0 {
		return 1
	}
	return (minutes + g.Interval - 1) / g.Interval
}

// Step returns the slot width as a duration.
func (g Grid) Step() time.Duration {
	return time.Duration(g.Interval) * time.Minute
}

// Slots returns the n slot timestamps starting at start.
func (g Grid) Slots(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.Add(time.Duration(i)*g.Step()))
	}
	return out
}

func atMinutes(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}
