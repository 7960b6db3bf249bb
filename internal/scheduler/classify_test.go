package scheduler

import (
	"testing"
	"time"

	"github.com/javiermolinar/rocinante/internal/lifeblock"
	"github.com/javiermolinar/rocinante/internal/occupancy"
	"github.com/javiermolinar/rocinante/internal/timegrid"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

func defaultDuration(*todoist.Task) int { return 30 }

func buildSet(t *testing.T, today time.Time, tasks []*todoist.Task, blocks lifeblock.Blocks) *occupancy.Set {
	t.Helper()
	return occupancy.Build(today, tasks, blocks, timegrid.Default(), defaultDuration)
}

func ids(tasks []*todoist.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestClassify_BasicBuckets(t *testing.T) {
	// Monday 2025-03-03.
	today := time.Date(2025, 3, 3, 10, 0, 0, 0, time.Local)

	tasks := []*todoist.Task{
		{ID: "no-due", Content: "someday"},
		{ID: "overdue", Due: &todoist.Due{Date: "2025-03-01", Datetime: "2025-03-01T17:00:00"}},
		{ID: "upcoming", Due: &todoist.Due{Date: "2025-03-04", Datetime: "2025-03-04T17:00:00"}},
		{ID: "recurring-overdue", Due: &todoist.Due{Date: "2025-03-01", Datetime: "2025-03-01T17:00:00", IsRecurring: true, String: "every Monday"}},
		{ID: "completed", IsCompleted: true},
		{ID: "exempt", Labels: []string{todoist.LabelKeepTime}, Due: &todoist.Due{Date: "2025-03-01", Datetime: "2025-03-01T17:00:00"}},
	}

	occ := buildSet(t, today, tasks, lifeblock.Blocks{})
	bad := Classify(tasks, today, occ, defaultDuration)

	got := ids(bad)
	want := []string{"no-due", "overdue"}
	if len(got) != len(want) {
		t.Fatalf("got bad tasks %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got bad tasks %v, want %v", got, want)
			break
		}
	}
}

func TestClassify_TodayValidMarkerLeftAlone(t *testing.T) {
	today := time.Date(2025, 3, 3, 10, 0, 0, 0, time.Local)

	task := &todoist.Task{
		ID:          "valid",
		Content:     "review notes",
		Description: `{"duration":"20m","fixed":false}`,
		Due:         &todoist.Due{Date: "2025-03-03", Datetime: "2025-03-03T17:00:00"},
	}
	tasks := []*todoist.Task{task}

	occ := buildSet(t, today, tasks, lifeblock.Blocks{})

	if bad := Classify(tasks, today, occ, defaultDuration); len(bad) != 0 {
		t.Errorf("task in a fully valid slot run must not be moved, got %v", ids(bad))
	}

	// Running again against the same state stays stable.
	if bad := Classify(tasks, today, occ, defaultDuration); len(bad) != 0 {
		t.Errorf("classification is idempotent, got %v", ids(bad))
	}
}

func TestClassify_TodayMarkerRunOutsideWindow(t *testing.T) {
	today := time.Date(2025, 3, 3, 10, 0, 0, 0, time.Local)

	// 20:35 + 20m crosses the 20:45 cutoff.
	task := &todoist.Task{
		ID:          "late",
		Description: `{"duration":"20m","fixed":false}`,
		Due:         &todoist.Due{Date: "2025-03-03", Datetime: "2025-03-03T20:35:00"},
	}
	tasks := []*todoist.Task{task}

	occ := buildSet(t, today, tasks, lifeblock.Blocks{})

	bad := Classify(tasks, today, occ, defaultDuration)
	if len(bad) != 1 || bad[0].ID != "late" {
		t.Errorf("run crossing the nightly cutoff must be flagged, got %v", ids(bad))
	}
}

func TestClassify_TodayMarkerRunOnProtectedSlot(t *testing.T) {
	today := time.Date(2025, 3, 3, 10, 0, 0, 0, time.Local)

	recurring := &todoist.Task{
		ID:          "standup",
		Description: `{"duration":"15m","fixed":true}`,
		Due:         &todoist.Due{Date: "2025-03-03", Datetime: "2025-03-03T17:00:00", IsRecurring: true, String: "every weekday"},
	}
	overlapping := &todoist.Task{
		ID:          "clash",
		Description: `{"duration":"20m","fixed":false}`,
		Due:         &todoist.Due{Date: "2025-03-03", Datetime: "2025-03-03T16:50:00"},
	}
	tasks := []*todoist.Task{recurring, overlapping}

	occ := buildSet(t, today, tasks, lifeblock.Blocks{})

	bad := Classify(tasks, today, occ, defaultDuration)
	if len(bad) != 1 || bad[0].ID != "clash" {
		t.Errorf("run overlapping a protected slot must be flagged, got %v", ids(bad))
	}
}

func TestClassify_LifeBlockCollision(t *testing.T) {
	// Friday 2025-01-10 with a 09:00-10:00 life block.
	today := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)
	blocks := lifeblock.Blocks{
		OneOff: []lifeblock.OneOff{{Date: "2025-01-10", Start: "09:00", End: "10:00", Label: "gym"}},
	}

	task := &todoist.Task{
		ID:          "collides",
		Description: `{"duration":"20m","fixed":false}`,
		Due:         &todoist.Due{Date: "2025-01-10", Datetime: "2025-01-10T09:15:00"},
	}
	tasks := []*todoist.Task{task}

	occ := buildSet(t, today, tasks, blocks)

	bad := Classify(tasks, today, occ, defaultDuration)
	if len(bad) != 1 || bad[0].ID != "collides" {
		t.Errorf("task colliding with a life block must be flagged, got %v", ids(bad))
	}
}

func TestClassify_LifeBlockCollisionWithoutMarker(t *testing.T) {
	// Saturday window opens 09:00, so the run itself is legal; only the life
	// block makes the task bad.
	today := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	blocks := lifeblock.Blocks{
		Weekly: []lifeblock.Weekly{{Days: []string{"sat"}, Start: "09:00", End: "10:00", Label: "errands"}},
	}

	task := &todoist.Task{
		ID:  "markerless",
		Due: &todoist.Due{Date: "2025-03-01", Datetime: "2025-03-01T09:30:00"},
	}
	tasks := []*todoist.Task{task}

	occ := buildSet(t, today, tasks, blocks)

	bad := Classify(tasks, today, occ, defaultDuration)
	if len(bad) != 1 || bad[0].ID != "markerless" {
		t.Errorf("collision check does not require a duration marker, got %v", ids(bad))
	}
}

func TestClassify_TodayNoMarkerNoCollision(t *testing.T) {
	today := time.Date(2025, 3, 3, 10, 0, 0, 0, time.Local)

	task := &todoist.Task{
		ID:  "plain",
		Due: &todoist.Due{Date: "2025-03-03", Datetime: "2025-03-03T17:00:00"},
	}
	tasks := []*todoist.Task{task}

	occ := buildSet(t, today, tasks, lifeblock.Blocks{})

	if bad := Classify(tasks, today, occ, defaultDuration); len(bad) != 0 {
		t.Errorf("markerless task due today without a collision is left alone, got %v", ids(bad))
	}
}
