// Package occupancy builds the per-run picture of which slots are taken.
//
// A Set is rebuilt on every scheduling run and threaded explicitly through
// the allocation steps: commits made for one task are visible to the next.
package occupancy

import (
	"sort"
	"time"

	"github.com/javiermolinar/rocinante/internal/lifeblock"
	"github.com/javiermolinar/rocinante/internal/timegrid"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

// Set is the union of life-block slots and slots consumed by tasks due on the
// scheduling day. Protected slots belong to recurring tasks; non-recurring
// tasks may never be placed on them.
type Set struct {
	grid      timegrid.Grid
	blocks    lifeblock.Blocks
	occupied  map[time.Time]struct{}
	protected map[time.Time]struct{}

	// life-block expansion is cached per date so multi-day scans stay cheap
	blockCache map[time.Time]map[time.Time]struct{}
}

// Build creates the occupancy set for a scheduling day. durationOf resolves a
// task's duration in minutes; the caller decides how much inference that
// involves.
func Build(date time.Time, tasks []*todoist.Task, blocks lifeblock.Blocks, grid timegrid.Grid, durationOf func(*todoist.Task) int) *Set {
	s := &Set{
		grid:       grid,
		blocks:     blocks,
		occupied:   make(map[time.Time]struct{}),
		protected:  make(map[time.Time]struct{}),
		blockCache: make(map[time.Time]map[time.Time]struct{}),
	}

	day := truncate(date)
	for slot := range s.lifeBlocksFor(day) {
		s.occupied[slot] = struct{}{}
	}

	for _, task := range tasks {
		if task.IsCompleted || task.IsExempt() {
			continue
		}
		due, ok := task.DueTime(date.Location())
		if !ok {
			continue
		}
		if !truncate(due).Equal(day) {
			continue
		}

		blocksNeeded := grid.Blocks(durationOf(task))
		for _, slot := range grid.Slots(due, blocksNeeded) {
			s.occupied[slot] = struct{}{}
			if task.IsRecurring() {
				s.protected[slot] = struct{}{}
			}
		}
	}

	return s
}

// Occupy marks n slots starting at start as taken.
func (s *Set) Occupy(start time.Time, n int) {
	for _, slot := range s.grid.Slots(start, n) {
		s.occupied[slot] = struct{}{}
	}
}

// Release frees a single slot. Used to drop a task's stale slot before it is
// moved.
func (s *Set) Release(slot time.Time) {
	delete(s.occupied, slot)
}

// IsOccupied reports whether a slot is taken by a task or life block on the
// scheduling day.
func (s *Set) IsOccupied(slot time.Time) bool {
	_, ok := s.occupied[slot]
	return ok
}

// IsProtected reports whether a slot belongs to a recurring task.
func (s *Set) IsProtected(slot time.Time) bool {
	_, ok := s.protected[slot]
	return ok
}

// LifeBlocked reports whether a slot is covered by a life block, resolved
// against the slot's own calendar date.
func (s *Set) LifeBlocked(slot time.Time) bool {
	_, ok := s.lifeBlocksFor(truncate(slot))[slot]
	return ok
}

// Blocked reports whether a slot is unusable: already occupied, covered by a
// life block, or outside the active window. The window and life blocks are
// resolved against the slot's own calendar date, not the scheduling day.
func (s *Set) Blocked(slot time.Time) bool {
	if s.IsOccupied(slot) {
		return true
	}
	if s.LifeBlocked(slot) {
		return true
	}
	return !s.grid.InWindow(slot)
}

// SortedOccupiedFrom returns the occupied slots on day at or after start, in
// ascending order. The gap finder walks this list.
func (s *Set) SortedOccupiedFrom(start time.Time, day time.Time) []time.Time {
	day = truncate(day)
	var out []time.Time
	for slot := range s.occupied {
		if truncate(slot).Equal(day) && !slot.Before(start) {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Grid returns the slot lattice the set was built on.
func (s *Set) Grid() timegrid.Grid {
	return s.grid
}

func (s *Set) lifeBlocksFor(day time.Time) map[time.Time]struct{} {
	if cached, ok := s.blockCache[day]; ok {
		return cached
	}
	slots := lifeblock.Resolve(day, s.blocks, s.grid)
	s.blockCache[day] = slots
	return slots
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
