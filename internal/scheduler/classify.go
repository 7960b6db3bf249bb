// Package scheduler decides which tasks are out of place, finds legal slots
// for them, and drives the per-run state machine that writes the results back
// to the task store.
package scheduler

import (
	"time"

	"github.com/javiermolinar/rocinante/internal/estimate"
	"github.com/javiermolinar/rocinante/internal/occupancy"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

// Classify returns the tasks that need placement. A task is bad when it has
// no due date, is overdue, or is due today but sits on slots that are no
// longer legal.
//
// Recurring tasks are never bad here; the overdue ones are handled by the
// run's reschedule step. A task due today with an explicit duration marker is
// left alone while its whole slot run stays valid, so a neighbor overrunning
// never cascades into moving it. Life-block collisions are checked before
// slot validity: a task whose run a life block now covers is flagged even if
// the run would otherwise be legal. Occupied slots claimed by other same-day
// tasks do not make a task bad; only allocator output is revalidated.
func Classify(tasks []*todoist.Task, today time.Time, occ *occupancy.Set, durationOf func(*todoist.Task) int) []*todoist.Task {
	grid := occ.Grid()
	day := midnight(today)

	var bad []*todoist.Task
	for _, t := range tasks {
		if t.IsCompleted || t.IsExempt() {
			continue
		}
		if t.Due == nil {
			bad = append(bad, t)
			continue
		}
		if t.IsRecurring() {
			continue
		}

		due, ok := t.DueTime(today.Location())
		if !ok {
			bad = append(bad, t)
			continue
		}
		dueDay := midnight(due)
		if dueDay.Before(day) {
			bad = append(bad, t)
			continue
		}
		if !dueDay.Equal(day) {
			continue
		}

		marker, hasMarker := estimate.ParseMarker(t.Description, grid.Interval)
		minutes := durationOf(t)
		if hasMarker {
			minutes = marker.Minutes
		}
		run := grid.Slots(due, grid.Blocks(minutes))

		if collidesWithLifeBlock(run, occ) {
			bad = append(bad, t)
			continue
		}
		if hasMarker && !runValid(run, occ) {
			bad = append(bad, t)
		}
	}
	return bad
}

func collidesWithLifeBlock(run []time.Time, occ *occupancy.Set) bool {
	for _, slot := range run {
		if occ.LifeBlocked(slot) {
			return true
		}
	}
	return false
}

// runValid reports whether every slot of the run is inside the active window
// and off protected ground. Ordinary occupancy by other tasks does not
// invalidate a run.
func runValid(run []time.Time, occ *occupancy.Set) bool {
	for _, slot := range run {
		if !occ.Grid().InWindow(slot) {
			return false
		}
		if occ.IsProtected(slot) {
			return false
		}
	}
	return true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
