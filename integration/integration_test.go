package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/rocinante/internal/config"
	"github.com/javiermolinar/rocinante/internal/db"
	"github.com/javiermolinar/rocinante/internal/estimate"
	"github.com/javiermolinar/rocinante/internal/lifeblock"
	"github.com/javiermolinar/rocinante/internal/llm"
	"github.com/javiermolinar/rocinante/internal/occupancy"
	"github.com/javiermolinar/rocinante/internal/scheduler"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

// openStore creates a fresh SQLite store for each test with automatic cleanup.
func openStore(t *testing.T) *db.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// scriptedClient pops canned answers in order and counts every call.
type scriptedClient struct {
	answers []string
	calls   int
}

func (c *scriptedClient) Chat(_ context.Context, _ []llm.Message) (string, error) {
	c.calls++
	if len(c.answers) == 0 {
		return "", fmt.Errorf("no scripted answer left (call %d)", c.calls)
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

func (c *scriptedClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	answer, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(answer), result)
}

// emptyStore is a task store with nothing to schedule.
type emptyStore struct{}

func (emptyStore) ListTasks(context.Context) ([]*todoist.Task, error) { return nil, nil }
func (emptyStore) UpdateTask(context.Context, string, todoist.UpdateArgs) error {
	return nil
}

func TestEstimatorSharesAnswersThroughSQLite(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	// One numeric estimate, one fixed/variable classification.
	client := &scriptedClient{answers: []string{"45", "VARIABLE"}}
	est := estimate.New(client, store, 5)

	got := est.Estimate(ctx, "Write report", "quarterly numbers")
	if got.Minutes != 45 || got.Fixed || got.UserSpecified {
		t.Fatalf("first estimate: got %+v, want 45m variable inferred", got)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 inference calls, got %d", client.calls)
	}

	// A second estimator over the same store must answer from the cache:
	// its client has no scripted answers, so any call would fail.
	second := estimate.New(&scriptedClient{}, store, 5)
	got = second.Estimate(ctx, "Write report", "quarterly numbers")
	if got.Minutes != 45 || got.Fixed {
		t.Fatalf("cached estimate: got %+v, want 45m variable", got)
	}
}

func TestEstimateSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	client := &scriptedClient{answers: []string{"90", "FIXED"}}
	estimate.New(client, store, 5).Estimate(ctx, "Team meeting", "")
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got := estimate.New(&scriptedClient{}, reopened, 5).Estimate(ctx, "Team meeting", "")
	if got.Minutes != 90 || !got.Fixed {
		t.Fatalf("estimate after reopen: got %+v, want 90m fixed", got)
	}
}

func TestLifeBlocksFlowIntoOccupancy(t *testing.T) {
	blocksPath := filepath.Join(t.TempDir(), "life_blocks.json")
	blockStore := lifeblock.NewStore(blocksPath)

	saved := lifeblock.Blocks{
		OneOff: []lifeblock.OneOff{
			{Date: "2025-01-10", Start: "17:00", End: "18:00", Label: "dentist"},
		},
		Weekly: []lifeblock.Weekly{
			{Days: []string{"sat"}, Start: "09:00", End: "10:00", Label: "gym"},
		},
	}
	if err := blockStore.Save(saved); err != nil {
		t.Fatalf("failed to save blocks: %v", err)
	}

	grid := config.Default().Grid()

	// Friday 2025-01-10: the one-off window must be blocked.
	friday := time.Date(2025, 1, 10, 16, 15, 0, 0, time.Local)
	occ := occupancy.Build(friday, nil, blockStore.Load(), grid, nil)

	inBlock := time.Date(2025, 1, 10, 17, 30, 0, 0, time.Local)
	if !occ.Blocked(inBlock) {
		t.Errorf("expected %v to be blocked by one-off window", inBlock)
	}
	free := time.Date(2025, 1, 10, 16, 30, 0, 0, time.Local)
	if occ.Blocked(free) {
		t.Errorf("expected %v to be free", free)
	}

	// Saturday 2025-01-11: the weekly window applies, resolved against the
	// slot's own date even when building for Friday.
	saturdayGym := time.Date(2025, 1, 11, 9, 30, 0, 0, time.Local)
	if !occ.Blocked(saturdayGym) {
		t.Errorf("expected %v to be blocked by weekly window", saturdayGym)
	}
}

func TestRunnerRecordsHistoryInSQLite(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	blockStore := lifeblock.NewStore(filepath.Join(t.TempDir(), "missing.json"))
	est := estimate.New(nil, store, 5)
	runner := scheduler.NewRunner(emptyStore{}, est, blockStore, config.Default().Grid(), 5*time.Minute, store)

	stats, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Fetched != 0 || stats.Placed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	recs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(recs))
	}
	if recs[0].Fetched != 0 || recs[0].LastError != "" {
		t.Errorf("recorded run: got %+v, want clean empty run", recs[0])
	}

	// A second run must append, newest first.
	if _, err := runner.Run(ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	recs, err = store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(recs))
	}
}
