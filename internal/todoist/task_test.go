package todoist

import (
	"testing"
	"time"
)

func TestDueTime_Datetime(t *testing.T) {
	task := &Task{
		Due: &Due{Date: "2025-01-10", Datetime: "2025-01-10T09:15:00"},
	}

	ts, ok := task.DueTime(time.Local)
	if !ok {
		t.Fatal("expected resolvable due time")
	}
	want := time.Date(2025, 1, 10, 9, 15, 0, 0, time.Local)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

func TestDueTime_DateOnly(t *testing.T) {
	task := &Task{Due: &Due{Date: "2025-01-10"}}

	ts, ok := task.DueTime(time.Local)
	if !ok {
		t.Fatal("expected resolvable due time")
	}
	if ts.Hour() != 0 || ts.Minute() != 0 {
		t.Errorf("date-only task should resolve to midnight, got %v", ts)
	}
	if !task.IsDateOnly() {
		t.Error("expected IsDateOnly")
	}
}

func TestDueTime_Missing(t *testing.T) {
	task := &Task{}
	if _, ok := task.DueTime(time.Local); ok {
		t.Error("task without due should not resolve")
	}

	bad := &Task{Due: &Due{Datetime: "not-a-time"}}
	if _, ok := bad.DueTime(time.Local); ok {
		t.Error("malformed datetime should not resolve")
	}
}

func TestLabels(t *testing.T) {
	task := &Task{Labels: []string{"errand", LabelKeepTime}}

	if !task.IsExempt() {
		t.Error("expected exempt")
	}
	if task.IsTestFixture() {
		t.Error("did not expect test fixture")
	}

	fixture := &Task{Labels: []string{LabelTestFixture}}
	if !fixture.IsTestFixture() {
		t.Error("expected test fixture")
	}
}

func TestDueDay(t *testing.T) {
	task := &Task{Due: &Due{Date: "2025-01-10", Datetime: "2025-01-10T18:30:00"}}

	day, ok := task.DueDay(time.Local)
	if !ok {
		t.Fatal("expected resolvable day")
	}
	want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local)
	if !day.Equal(want) {
		t.Errorf("got %v, want %v", day, want)
	}
}
