package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/javiermolinar/rocinante/internal/estimate"
	"github.com/javiermolinar/rocinante/internal/lifeblock"
	"github.com/javiermolinar/rocinante/internal/occupancy"
	"github.com/javiermolinar/rocinante/internal/timegrid"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

// ErrRunInProgress is returned when a run is requested while another is still
// executing. Runs never overlap; the caller should retry after the current
// one finishes.
var ErrRunInProgress = errors.New("a scheduling run is already in progress")

// Store is the slice of the task-store contract the runner needs.
type Store interface {
	ListTasks(ctx context.Context) ([]*todoist.Task, error)
	UpdateTask(ctx context.Context, id string, args todoist.UpdateArgs) error
}

// DurationEstimator resolves task durations and priorities.
type DurationEstimator interface {
	Estimate(ctx context.Context, content, description string) estimate.Estimate
	EstimatePriority(ctx context.Context, content, description string) (int, bool)
}

// BlockSource loads the user's life-block declarations. Implementations
// treat unreadable data as an empty configuration.
type BlockSource interface {
	Load() lifeblock.Blocks
}

// History records completed runs. Implementations are best effort.
type History interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// RunRecord summarizes one completed run for the history log.
type RunRecord struct {
	Started     time.Time
	Duration    time.Duration
	Fetched     int
	Rescheduled int
	Placed      int
	Skipped     int
	LastError   string
}

// Stats reports what a single run did.
type Stats struct {
	Fetched       int
	Reprioritized int
	Rescheduled   int
	Placed        int
	Skipped       int
	Errors        []error
}

// LastError returns the last per-task error of the run, or nil.
func (s *Stats) LastError() error {
	if len(s.Errors) == 0 {
		return nil
	}
	return s.Errors[len(s.Errors)-1]
}

// Runner is the per-run state machine: fetch, auto-prioritize, build
// occupancy, reschedule overdue recurring tasks, allocate bad tasks. One
// Runner allows one in-flight run at a time.
type Runner struct {
	store   Store
	est     DurationEstimator
	blocks  BlockSource
	grid    timegrid.Grid
	every   time.Duration
	history History

	now func() time.Time

	busy    atomic.Bool
	mu      sync.Mutex
	lastRun time.Time
	nextRun time.Time
	lastErr error
}

// NewRunner creates a Runner. history may be nil; every is the interval
// between timed runs, used to report NextRun.
func NewRunner(store Store, est DurationEstimator, blocks BlockSource, grid timegrid.Grid, every time.Duration, history History) *Runner {
	return &Runner{
		store:   store,
		est:     est,
		blocks:  blocks,
		grid:    grid,
		every:   every,
		history: history,
		now:     time.Now,
	}
}

// LastRun returns when the last run started. Zero before the first run.
func (r *Runner) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// NextRun returns when the next timed run is expected.
func (r *Runner) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRun
}

// LastError returns the last run's trailing error, nil if it was clean.
func (r *Runner) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Run executes one full scheduling pass. A second call while one is in
// flight returns ErrRunInProgress. Per-task write failures do not abort the
// batch; they are collected in Stats and surfaced through LastError.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.busy.Store(false)

	started := r.now()
	stats := &Stats{}

	err := r.runLocked(ctx, started, stats)

	r.mu.Lock()
	r.lastRun = started
	r.nextRun = started.Add(r.every)
	if err != nil {
		r.lastErr = err
	} else {
		r.lastErr = stats.LastError()
	}
	r.mu.Unlock()

	if r.history != nil {
		rec := RunRecord{
			Started:     started,
			Duration:    r.now().Sub(started),
			Fetched:     stats.Fetched,
			Rescheduled: stats.Rescheduled,
			Placed:      stats.Placed,
			Skipped:     stats.Skipped,
		}
		if err != nil {
			rec.LastError = err.Error()
		} else if last := stats.LastError(); last != nil {
			rec.LastError = last.Error()
		}
		_ = r.history.RecordRun(ctx, rec)
	}

	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Watch runs immediately, then on a fixed interval until ctx is cancelled.
// onRun receives every run's outcome; it may be nil.
func (r *Runner) Watch(ctx context.Context, onRun func(*Stats, error)) error {
	report := func(stats *Stats, err error) {
		if onRun != nil {
			onRun(stats, err)
		}
	}

	report(r.Run(ctx))

	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report(r.Run(ctx))
		}
	}
}

func (r *Runner) runLocked(ctx context.Context, now time.Time, stats *Stats) error {
	tasks, err := r.fetch(ctx)
	if err != nil {
		return err
	}
	stats.Fetched = len(tasks)

	r.autoPrioritize(ctx, tasks, stats)

	blocks := r.blocks.Load()

	durationOf := func(t *todoist.Task) int {
		return r.est.Estimate(ctx, t.Content, t.Description).Minutes
	}

	occ := occupancy.Build(now, tasks, blocks, r.grid, durationOf)

	if rescheduled := r.rescheduleOverdueRecurring(ctx, tasks, now, stats); rescheduled > 0 {
		// New occurrences may land on today; start over from a fresh view.
		tasks, err = r.fetch(ctx)
		if err != nil {
			return err
		}
		occ = occupancy.Build(now, tasks, blocks, r.grid, durationOf)
	}

	r.allocate(ctx, tasks, now, occ, durationOf, stats)
	return nil
}

// fetch loads active tasks, dropping synthetic test fixtures.
func (r *Runner) fetch(ctx context.Context) ([]*todoist.Task, error) {
	all, err := r.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	tasks := all[:0]
	for _, t := range all {
		if t.IsTestFixture() {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// autoPrioritize asks the estimator whether lowest-tier tasks are urgent and
// writes confident answers back. Failures leave the priority untouched.
func (r *Runner) autoPrioritize(ctx context.Context, tasks []*todoist.Task, stats *Stats) {
	for _, t := range tasks {
		if t.Priority != todoist.PriorityLowest {
			continue
		}
		priority, ok := r.est.EstimatePriority(ctx, t.Content, t.Description)
		if !ok {
			continue
		}
		if err := r.store.UpdateTask(ctx, t.ID, todoist.UpdateArgs{Priority: &priority}); err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("updating priority of task %s: %w", t.ID, err))
			continue
		}
		t.Priority = priority
		stats.Reprioritized++
	}
}

// rescheduleOverdueRecurring reissues the original recurrence expression of
// every overdue recurring task. The store owns the pattern and resolves the
// next occurrence; nothing is recomputed locally.
func (r *Runner) rescheduleOverdueRecurring(ctx context.Context, tasks []*todoist.Task, now time.Time, stats *Stats) int {
	today := midnight(now)

	rescheduled := 0
	for _, t := range tasks {
		if t.IsCompleted || t.IsExempt() || !t.IsRecurring() {
			continue
		}
		dueDay, ok := t.DueDay(now.Location())
		if !ok || !dueDay.Before(today) {
			continue
		}

		due := t.Due.String
		if err := r.store.UpdateTask(ctx, t.ID, todoist.UpdateArgs{DueString: &due}); err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("rescheduling recurring task %s: %w", t.ID, err))
			continue
		}
		rescheduled++
	}
	stats.Rescheduled = rescheduled
	return rescheduled
}

// allocate classifies the bad tasks and places them one at a time, most
// urgent first. Slot commits from one task are visible to the next, so a
// single run can never double-book.
func (r *Runner) allocate(ctx context.Context, tasks []*todoist.Task, now time.Time, occ *occupancy.Set, durationOf func(*todoist.Task) int, stats *Stats) {
	bad := Classify(tasks, now, occ, durationOf)
	sort.SliceStable(bad, func(i, j int) bool { return bad[i].Priority > bad[j].Priority })

	start := StartTime(now, r.grid)
	gaps := Gaps(occ, start, now)

	for _, t := range bad {
		est := r.est.Estimate(ctx, t.Content, t.Description)
		numBlocks := r.grid.Blocks(est.Minutes)

		slot, ok := r.findSlot(t, occ, gaps, start, now, numBlocks)
		if !ok {
			stats.Skipped++
			continue
		}

		// Free the stale slot before committing the new run.
		if oldDue, hasDue := t.DueTime(now.Location()); hasDue && occ.IsOccupied(oldDue) {
			occ.Release(oldDue)
		}
		occ.Occupy(slot, numBlocks)

		args := todoist.UpdateArgs{DueDatetime: &slot}
		if !est.UserSpecified {
			// Persist the resolved duration so future runs see it as explicit.
			desc := estimate.ApplyMarker(t.Description, est.Minutes, est.Fixed)
			args.Description = &desc
		}
		if err := r.store.UpdateTask(ctx, t.ID, args); err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("placing task %s: %w", t.ID, err))
			continue
		}
		stats.Placed++
	}
}

// findSlot picks the target slot for one task: gap-fit first, then the
// bounded forward scan. Date-pinned tasks stay on their own date or nowhere.
func (r *Runner) findSlot(t *todoist.Task, occ *occupancy.Set, gaps []Gap, start, now time.Time, numBlocks int) (time.Time, bool) {
	if t.IsDateOnly() {
		target, ok := t.DueDay(now.Location())
		if !ok || !target.Equal(midnight(now)) {
			return time.Time{}, false
		}
		if slot, ok := FindGapForTask(gaps, occ, numBlocks); ok {
			return slot, true
		}
		return FindAvailableSlotForDate(occ, start, numBlocks, target)
	}

	if slot, ok := FindGapForTask(gaps, occ, numBlocks); ok {
		return slot, true
	}
	return FindAvailableSlot(occ, start, numBlocks)
}
