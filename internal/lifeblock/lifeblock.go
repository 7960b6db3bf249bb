// Package lifeblock expands user-declared unavailable windows into occupied slots.
package lifeblock

import (
	"strings"
	"time"

	"github.com/javiermolinar/rocinante/internal/timegrid"
)

// OneOff is an unavailable window on a specific calendar date.
type OneOff struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
	Label string `json:"label"`
}

// Weekly is an unavailable window recurring on a set of weekdays.
type Weekly struct {
	Days  []string `json:"days"` // e.g. ["mon", "Wednesday", "FRI"]
	Start string   `json:"start"`
	End   string   `json:"end"`
	Label string   `json:"label"`
}

// Blocks is the whole user-declared life block configuration.
type Blocks struct {
	OneOff []OneOff `json:"one_off"`
	Weekly []Weekly `json:"weekly"`
}

// Resolve expands every block matching the given date into slot timestamps on
// the grid. A malformed entry (bad time string, inverted range, bad date) is
// skipped without affecting the rest.
func Resolve(date time.Time, blocks Blocks, grid timegrid.Grid) map[time.Time]struct{} {
	slots := make(map[time.Time]struct{})
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	for _, b := range blocks.OneOff {
		bd, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(b.Date), date.Location())
		if err != nil || !bd.Equal(day) {
			continue
		}
		expand(slots, day, b.Start, b.End, grid)
	}

	slug := daySlug(date)
	for _, b := range blocks.Weekly {
		if !containsDay(b.Days, slug) {
			continue
		}
		expand(slots, day, b.Start, b.End, grid)
	}

	return slots
}

// expand adds the [start, end) slot run anchored to day. Unparsable or
// inverted ranges add nothing.
func expand(slots map[time.Time]struct{}, day time.Time, start, end string, grid timegrid.Grid) {
	startMin, ok := parseClock(start)
	if !ok {
		return
	}
	endMin, ok := parseClock(end)
	if !ok {
		return
	}
	if endMin <= startMin {
		return
	}

	cur := day.Add(time.Duration(startMin) * time.Minute)
	stop := day.Add(time.Duration(endMin) * time.Minute)
	for cur.Before(stop) {
		slots[cur] = struct{}{}
		cur = cur.Add(grid.Step())
	}
}

// daySlug returns the normalized 3-letter weekday code for a date.
func daySlug(t time.Time) string {
	return strings.ToLower(t.Weekday().String())[:3]
}

func containsDay(days []string, slug string) bool {
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if len(d) > 3 {
			d = d[:3]
		}
		if d == slug {
			return true
		}
	}
	return false
}

// parseClock parses "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return parsed.Hour()*60 + parsed.Minute(), true
}
