package scheduler

import (
	"time"

	"github.com/javiermolinar/rocinante/internal/occupancy"
	"github.com/javiermolinar/rocinante/internal/timegrid"
)

// maxScanSteps bounds the linear forward scan (~34 days of 5-minute steps).
const maxScanSteps = 10000

// Gap is a maximal free interval [Start, End) on the scheduling day.
type Gap struct {
	Start time.Time
	End   time.Time
}

// Minutes returns the gap's length in minutes.
func (g Gap) Minutes() int {
	return int(g.End.Sub(g.Start).Minutes())
}

// StartTime returns the earliest instant the allocator may place a task:
// one hour from now, rounded up to the slot lattice. Never in the immediate
// past, never mid-action.
func StartTime(now time.Time, grid timegrid.Grid) time.Time {
	earliest := grid.RoundUp(now.Add(time.Hour))
	if rounded := grid.RoundUp(now); rounded.After(earliest) {
		return rounded
	}
	return earliest
}

// Gaps returns the free intervals between start and the day's nightly cutoff,
// computed by walking the sorted occupied slots and emitting the complements.
func Gaps(occ *occupancy.Set, start time.Time, day time.Time) []Gap {
	grid := occ.Grid()
	end := grid.DayEnd(day)
	step := grid.Step()

	occupied := occ.SortedOccupiedFrom(start, day)
	if len(occupied) == 0 {
		return []Gap{{Start: start, End: end}}
	}

	var gaps []Gap
	if occupied[0].After(start) {
		gaps = append(gaps, Gap{Start: start, End: occupied[0]})
	}

	runEnd := occupied[0]
	for _, slot := range occupied[1:] {
		if slot.Equal(runEnd.Add(step)) {
			runEnd = slot
			continue
		}
		gaps = append(gaps, Gap{Start: runEnd.Add(step), End: slot})
		runEnd = slot
	}

	if last := runEnd.Add(step); last.Before(end) {
		gaps = append(gaps, Gap{Start: last, End: end})
	}
	return gaps
}

// FindGapForTask returns the start of the first gap long enough for numBlocks
// slots whose every constituent slot is actually free and unprotected. A gap
// can be long enough on paper yet contain a protected hole or a slot claimed
// since the gaps were computed.
func FindGapForTask(gaps []Gap, occ *occupancy.Set, numBlocks int) (time.Time, bool) {
	grid := occ.Grid()
	for _, gap := range gaps {
		if gap.Minutes() < numBlocks*grid.Interval {
			continue
		}
		if slotRunFree(occ, gap.Start, numBlocks) {
			return gap.Start, true
		}
	}
	return time.Time{}, false
}

// FindAvailableSlot scans forward in slot-width steps from start for a free
// run of numBlocks slots. The scan is bounded; exhaustion means the task is
// skipped this run, not an error.
func FindAvailableSlot(occ *occupancy.Set, start time.Time, numBlocks int) (time.Time, bool) {
	step := occ.Grid().Step()
	slot := start
	for i := 0; i < maxScanSteps; i++ {
		if slotRunFree(occ, slot, numBlocks) {
			return slot, true
		}
		slot = slot.Add(step)
	}
	return time.Time{}, false
}

// FindAvailableSlotForDate scans like FindAvailableSlot but never leaves the
// target calendar date. Date-pinned tasks are not forced onto another day.
func FindAvailableSlotForDate(occ *occupancy.Set, start time.Time, numBlocks int, target time.Time) (time.Time, bool) {
	step := occ.Grid().Step()
	day := midnight(target)
	slot := start
	for i := 0; i < maxScanSteps; i++ {
		if !midnight(slot).Equal(day) {
			return time.Time{}, false
		}
		if slotRunFree(occ, slot, numBlocks) {
			return slot, true
		}
		slot = slot.Add(step)
	}
	return time.Time{}, false
}

func slotRunFree(occ *occupancy.Set, start time.Time, numBlocks int) bool {
	for _, slot := range occ.Grid().Slots(start, numBlocks) {
		if occ.Blocked(slot) || occ.IsProtected(slot) {
			return false
		}
	}
	return true
}
