// Package todoist provides the task store model and REST client.
package todoist

import (
	"time"
)

// Labels with engine-level meaning.
const (
	// LabelKeepTime exempts a task from rescheduling.
	LabelKeepTime = "#dontchangetime"
	// LabelTestFixture marks synthetic tasks that the engine ignores entirely.
	LabelTestFixture = "#testnotification"
)

// Priority tiers, 4 is the most urgent (Todoist P1).
const (
	PriorityLowest = 1
	PriorityUrgent = 4
)

// Due describes when a task is due. A task carries either a bare calendar
// date or a precise datetime, optionally recurring.
type Due struct {
	Date        string `json:"date"`               // YYYY-MM-DD
	Datetime    string `json:"datetime,omitempty"` // RFC 3339, empty for all-day tasks
	IsRecurring bool   `json:"is_recurring"`
	String      string `json:"string"` // recurrence expression, owned by the store
}

// Task is the external task entity. The engine reads it and issues due-time
// and description updates; everything else belongs to the store.
type Task struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Labels      []string `json:"labels"`
	Due         *Due     `json:"due"`
	IsCompleted bool     `json:"is_completed"`
}

// HasLabel reports whether the task carries the given label.
func (t *Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsExempt reports whether the task may never be rescheduled.
func (t *Task) IsExempt() bool {
	return t.HasLabel(LabelKeepTime)
}

// IsTestFixture reports whether the task is a synthetic fixture to skip.
func (t *Task) IsTestFixture() bool {
	return t.HasLabel(LabelTestFixture)
}

// IsDateOnly reports whether the task is pinned to a calendar date with no
// specific time.
func (t *Task) IsDateOnly() bool {
	return t.Due != nil && t.Due.Date != "" && t.Due.Datetime == ""
}

// IsRecurring reports whether the task's due date recurs.
func (t *Task) IsRecurring() bool {
	return t.Due != nil && t.Due.IsRecurring
}

// DueTime resolves the task's due moment in the given location.
// Date-only tasks resolve to midnight of their date. The second return is
// false when the task has no due date or it cannot be parsed.
func (t *Task) DueTime(loc *time.Location) (time.Time, bool) {
	if t.Due == nil {
		return time.Time{}, false
	}
	if t.Due.Datetime != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if ts, err := time.ParseInLocation(layout, t.Due.Datetime, loc); err == nil {
				return ts.In(loc), true
			}
		}
		return time.Time{}, false
	}
	if t.Due.Date != "" {
		if d, err := time.ParseInLocation("2006-01-02", t.Due.Date, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// DueDay returns the calendar day the task is due on, truncated to midnight.
func (t *Task) DueDay(loc *time.Location) (time.Time, bool) {
	ts, ok := t.DueTime(loc)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc), true
}
