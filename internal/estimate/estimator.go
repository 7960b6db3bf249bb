package estimate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/javiermolinar/rocinante/internal/llm"
)

// AI estimate bounds in minutes.
const (
	minAIEstimate = 5
	maxAIEstimate = 240
)

// Estimate is the resolved duration and classification of a task.
type Estimate struct {
	Minutes       int
	Fixed         bool
	UserSpecified bool
}

// Cache stores AI answers so repeated runs do not re-query the inference
// service for unchanged tasks. Implementations are best effort; the estimator
// ignores cache errors.
type Cache interface {
	GetEstimate(ctx context.Context, key string) (minutes int, fixed bool, ok bool, err error)
	PutEstimate(ctx context.Context, key string, minutes int, fixed bool) error
}

// Estimator resolves task durations. Both client and cache may be nil; every
// path degrades to a deterministic answer.
type Estimator struct {
	client   llm.Client
	cache    Cache
	interval int
}

// New creates an Estimator. interval is the slot width in minutes.
func New(client llm.Client, cache Cache, interval int) *Estimator {
	return &Estimator{client: client, cache: cache, interval: interval}
}

var firstNumber = regexp.MustCompile(`\d+`)

// Estimate resolves a task's duration and fixed/variable nature.
//
// Resolution order: explicit marker in the description, then an AI estimate,
// then keyword heuristics. It never fails; a missing or unreachable inference
// service only degrades the answer.
func (e *Estimator) Estimate(ctx context.Context, content, description string) Estimate {
	if m, ok := ParseMarker(description, e.interval); ok {
		if m.HasFixed {
			return Estimate{Minutes: m.Minutes, Fixed: m.Fixed, UserSpecified: true}
		}
		// Duration came from the user, only the classification is inferred.
		return Estimate{Minutes: m.Minutes, Fixed: e.classifyFixed(ctx, content, description), UserSpecified: true}
	}

	if minutes, fixed, ok := e.aiEstimate(ctx, content, description); ok {
		return Estimate{Minutes: minutes, Fixed: fixed}
	}

	return Estimate{Minutes: heuristicMinutes(content, description)}
}

// aiEstimate asks the inference service for a numeric estimate and a
// classification, consulting the cache first.
func (e *Estimator) aiEstimate(ctx context.Context, content, description string) (int, bool, bool) {
	if e.client == nil {
		return 0, false, false
	}

	key := taskHash(content, description)
	if e.cache != nil {
		if minutes, fixed, ok, err := e.cache.GetEstimate(ctx, key); err == nil && ok {
			return minutes, fixed, true
		}
	}

	answer, err := e.client.Chat(ctx, []llm.Message{
		llm.System("You are a task duration estimator. Reply with only a number (minutes)."),
		llm.User("Task: " + content + "\nDescription: " + description + "\n\n" +
			"Estimate how many minutes this task will take. Reply with ONLY a number (in minutes).\n" +
			"Give a LOW estimate - assume optimal conditions with no interruptions or complications.\n" +
			"It's better to underestimate than overestimate."),
	})
	if err != nil {
		return 0, false, false
	}

	raw := firstNumber.FindString(answer)
	if raw == "" {
		return 0, false, false
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, false
	}
	if minutes < minAIEstimate {
		minutes = minAIEstimate
	}
	if minutes > maxAIEstimate {
		minutes = maxAIEstimate
	}
	minutes = Quantize(minutes, e.interval)

	fixed := e.classifyFixed(ctx, content, description)

	if e.cache != nil {
		_ = e.cache.PutEstimate(ctx, key, minutes, fixed)
	}
	return minutes, fixed, true
}

// classifyFixed asks whether the task has a rigid real-world duration.
// Any failure defaults to variable.
func (e *Estimator) classifyFixed(ctx context.Context, content, description string) bool {
	if e.client == nil {
		return false
	}

	answer, err := e.client.Chat(ctx, []llm.Message{
		llm.System("You classify tasks. Reply with only one word: FIXED or VARIABLE."),
		llm.User("Task: " + content + "\nDescription: " + description + "\n\n" +
			"Does this task have a rigid real-world duration?\n" +
			"- FIXED: meetings, appointments, calls, classes, anything with a set length\n" +
			"- VARIABLE: open-ended study, writing, chores, anything elastic"),
	})
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(answer), "FIXED")
}

// EstimatePriority asks whether a task is urgent. It returns 4 (urgent) or
// 2 (normal) and true on a confident answer; anything else means "leave the
// priority alone".
func (e *Estimator) EstimatePriority(ctx context.Context, content, description string) (int, bool) {
	if e.client == nil {
		return 0, false
	}

	answer, err := e.client.Chat(ctx, []llm.Message{
		llm.System("You assign Todoist priorities. Reply only with 4 or 2."),
		llm.User("Task: " + content + "\nDescription: " + description + "\n\n" +
			"Decide if this task is urgent or time-sensitive.\n" +
			"Reply with ONLY one number:\n" +
			"- 4 for urgent (Todoist P1)\n" +
			"- 2 for normal (Todoist P3)\n" +
			"Never reply with 3."),
	})
	if err != nil {
		return 0, false
	}

	raw := firstNumber.FindString(answer)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil || (value != 2 && value != 4) {
		return 0, false
	}
	return value, true
}

// taskHash keys the cache on the task text.
func taskHash(content, description string) string {
	sum := sha256.Sum256([]byte(content + "\x00" + description))
	return hex.EncodeToString(sum[:])
}
