// Package estimate resolves a task's duration and fixed/variable nature from
// explicit markers, an optional AI estimate, or keyword heuristics.
package estimate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Duration marker encoding, owned by this engine: a small JSON object embedded
// in the task description. The legacy plain-text "NNm" token is recognized but
// never produced.
var (
	markerPattern = regexp.MustCompile(`\{[^{}]*"duration"[^{}]*\}`)
	legacyPattern = regexp.MustCompile(`(\d+)m\b`)
	minutesValue  = regexp.MustCompile(`^(\d+)m$`)
)

// Marker is a parsed duration marker.
type Marker struct {
	Minutes  int
	Fixed    bool
	HasFixed bool // false for legacy markers that carry no fixed flag
}

type markerJSON struct {
	Duration string `json:"duration"`
	Fixed    *bool  `json:"fixed,omitempty"`
}

// ParseMarker extracts a duration marker from a description. It prefers the
// JSON form and falls back to the last legacy "NNm" token. Minutes are
// quantized to the grid. The second return is false when no marker exists.
func ParseMarker(description string, interval int) (Marker, bool) {
	if description == "" {
		return Marker{}, false
	}

	if raw := markerPattern.FindString(description); raw != "" {
		var mj markerJSON
		if err := json.Unmarshal([]byte(raw), &mj); err == nil {
			if sub := minutesValue.FindStringSubmatch(strings.TrimSpace(mj.Duration)); sub != nil {
				minutes, _ := strconv.Atoi(sub[1])
				m := Marker{Minutes: Quantize(minutes, interval)}
				if mj.Fixed != nil {
					m.Fixed = *mj.Fixed
					m.HasFixed = true
				}
				return m, true
			}
		}
	}

	matches := legacyPattern.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return Marker{}, false
	}
	minutes, _ := strconv.Atoi(matches[len(matches)-1][1])
	return Marker{Minutes: Quantize(minutes, interval)}, true
}

// EncodeMarker renders the JSON marker form.
func EncodeMarker(minutes int, fixed bool) string {
	return fmt.Sprintf(`{"duration":"%dm","fixed":%t}`, minutes, fixed)
}

// ApplyMarker embeds or replaces the JSON duration marker in a description.
// An existing JSON marker is replaced in place; otherwise the marker is
// appended. Legacy tokens are left alone so user text stays intact.
func ApplyMarker(description string, minutes int, fixed bool) string {
	marker := EncodeMarker(minutes, fixed)
	if markerPattern.MatchString(description) {
		return markerPattern.ReplaceAllLiteralString(description, marker)
	}
	if description == "" {
		return marker
	}
	return strings.TrimSpace(description) + " " + marker
}

// Quantize rounds minutes to the nearest grid interval, minimum 1.
func Quantize(minutes, interval int) int {
	if interval <= 0 {
		interval = 5
	}
	q := ((minutes + interval/2) / interval) * interval
	if q < 1 {
		q = 1
	}
	return q
}
