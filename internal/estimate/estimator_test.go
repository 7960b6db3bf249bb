package estimate

import (
	"context"
	"errors"
	"testing"

	"github.com/javiermolinar/rocinante/internal/llm"
)

// fakeClient replays canned answers.
type fakeClient struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeClient) Chat(_ context.Context, _ []llm.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no canned reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeClient) ChatJSON(_ context.Context, _ []llm.Message, _ any) error {
	return errors.New("not used")
}

type fakeCache struct {
	minutes int
	fixed   bool
	hit     bool
	puts    int
}

func (f *fakeCache) GetEstimate(_ context.Context, _ string) (int, bool, bool, error) {
	return f.minutes, f.fixed, f.hit, nil
}

func (f *fakeCache) PutEstimate(_ context.Context, _ string, minutes int, fixed bool) error {
	f.puts++
	f.minutes = minutes
	f.fixed = fixed
	return nil
}

func TestEstimate_ExplicitMarkerSkipsInference(t *testing.T) {
	client := &fakeClient{}
	e := New(client, nil, 5)

	got := e.Estimate(context.Background(), "dentist", `{"duration":"45m","fixed":true}`)

	if got.Minutes != 45 || !got.Fixed || !got.UserSpecified {
		t.Errorf("got %+v, want {45 true true}", got)
	}
	if client.calls != 0 {
		t.Errorf("explicit marker must not call inference, got %d calls", client.calls)
	}
}

func TestEstimate_LegacyMarkerClassifiesFixed(t *testing.T) {
	client := &fakeClient{replies: []string{"FIXED"}}
	e := New(client, nil, 5)

	got := e.Estimate(context.Background(), "team sync", "weekly sync 30m")

	if got.Minutes != 30 || !got.Fixed || !got.UserSpecified {
		t.Errorf("got %+v, want {30 true true}", got)
	}
	if client.calls != 1 {
		t.Errorf("expected one classification call, got %d", client.calls)
	}
}

func TestEstimate_LegacyMarkerClassifierDownDefaultsVariable(t *testing.T) {
	client := &fakeClient{err: errors.New("service down")}
	e := New(client, nil, 5)

	got := e.Estimate(context.Background(), "team sync", "weekly sync 30m")

	if got.Minutes != 30 || got.Fixed {
		t.Errorf("got %+v, want variable 30m", got)
	}
}

func TestEstimate_AIEstimate(t *testing.T) {
	// First reply is the numeric estimate, second the classification.
	client := &fakeClient{replies: []string{"25 minutes or so", "VARIABLE"}}
	e := New(client, nil, 5)

	got := e.Estimate(context.Background(), "tidy desk", "")

	if got.Minutes != 25 || got.Fixed || got.UserSpecified {
		t.Errorf("got %+v, want {25 false false}", got)
	}
}

func TestEstimate_AIClamped(t *testing.T) {
	tests := []struct {
		reply string
		want  int
	}{
		{"2", 5},    // below minimum
		{"500", 240}, // above maximum
		{"37", 35},  // quantized to the grid
	}

	for _, tt := range tests {
		client := &fakeClient{replies: []string{tt.reply, "VARIABLE"}}
		e := New(client, nil, 5)
		got := e.Estimate(context.Background(), "xyzzy", "")
		if got.Minutes != tt.want {
			t.Errorf("reply %q: got %d minutes, want %d", tt.reply, got.Minutes, tt.want)
		}
	}
}

func TestEstimate_FallbackHeuristic(t *testing.T) {
	e := New(&fakeClient{err: errors.New("down")}, nil, 5)

	tests := []struct {
		content string
		want    int
	}{
		{"check email", 10},
		{"read chapter 4", 25},
		{"build a shed", 45},
		{"xyzzy", 30},
	}

	for _, tt := range tests {
		got := e.Estimate(context.Background(), tt.content, "")
		if got.Minutes != tt.want {
			t.Errorf("%q: got %d minutes, want %d", tt.content, got.Minutes, tt.want)
		}
		if got.Fixed || got.UserSpecified {
			t.Errorf("%q: heuristic results are variable and not user-specified", tt.content)
		}
	}
}

func TestEstimate_NilClientUsesHeuristic(t *testing.T) {
	e := New(nil, nil, 5)
	got := e.Estimate(context.Background(), "organize garage", "")
	if got.Minutes != 45 || got.Fixed {
		t.Errorf("got %+v, want heuristic long", got)
	}
}

func TestEstimate_CacheHitSkipsInference(t *testing.T) {
	client := &fakeClient{}
	cache := &fakeCache{minutes: 20, fixed: true, hit: true}
	e := New(client, cache, 5)

	got := e.Estimate(context.Background(), "xyzzy", "")

	if got.Minutes != 20 || !got.Fixed {
		t.Errorf("got %+v, want cached {20 true}", got)
	}
	if client.calls != 0 {
		t.Errorf("cache hit must not call inference, got %d calls", client.calls)
	}
}

func TestEstimate_CacheStoresAIAnswer(t *testing.T) {
	client := &fakeClient{replies: []string{"40", "FIXED"}}
	cache := &fakeCache{}
	e := New(client, cache, 5)

	got := e.Estimate(context.Background(), "xyzzy", "")

	if got.Minutes != 40 || !got.Fixed {
		t.Errorf("got %+v, want {40 true}", got)
	}
	if cache.puts != 1 || cache.minutes != 40 || !cache.fixed {
		t.Errorf("expected AI answer cached, got %+v", cache)
	}
}

func TestEstimatePriority(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		want   int
		ok     bool
	}{
		{"urgent", &fakeClient{replies: []string{"4"}}, 4, true},
		{"normal", &fakeClient{replies: []string{"2"}}, 2, true},
		{"forbidden tier", &fakeClient{replies: []string{"3"}}, 0, false},
		{"no number", &fakeClient{replies: []string{"maybe"}}, 0, false},
		{"service down", &fakeClient{err: errors.New("down")}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.client, nil, 5)
			got, ok := e.EstimatePriority(context.Background(), "pay rent", "")
			if got != tt.want || ok != tt.ok {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
