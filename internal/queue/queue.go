// Package queue builds the priority-ordered "do next" list. It is an
// independent consumer of the task set: nothing here writes back to the
// store or touches occupancy.
package queue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javiermolinar/rocinante/internal/estimate"
	"github.com/javiermolinar/rocinante/internal/llm"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

// Candidate is the reduced task projection used for ordering, discarded
// after one pass.
type Candidate struct {
	ID          string
	Content     string
	Description string
	Due         time.Time
	IsRecurring bool
	Priority    int
	Minutes     int
	Fixed       bool
}

// DurationSource resolves a candidate's duration and fixed/variable nature.
type DurationSource interface {
	Estimate(ctx context.Context, content, description string) estimate.Estimate
}

// Engine orders tasks. The inference client is optional; without it the
// ordering is a pure function of the task set.
type Engine struct {
	client llm.Client
	est    DurationSource

	now func() time.Time
}

// New creates an ordering Engine. client may be nil.
func New(client llm.Client, est DurationSource) *Engine {
	return &Engine{client: client, est: est, now: time.Now}
}

// Order returns the tasks in recommended working order: overdue before
// today before upcoming, fixed-duration before variable within each
// bucket. An empty task set yields an empty list, never an error.
func (e *Engine) Order(ctx context.Context, tasks []*todoist.Task) []Candidate {
	now := e.now()
	candidates := e.gather(ctx, tasks, now)
	if len(candidates) == 0 {
		return nil
	}

	strat := e.rank(ctx, candidates)

	overdue, today, upcoming := partition(candidates, now)

	out := make([]Candidate, 0, len(candidates))
	for _, bucket := range [][]Candidate{overdue, today, upcoming} {
		fixed, variable := split(bucket)
		strat.sortFixed(fixed)
		strat.sortVariable(variable)
		out = append(out, fixed...)
		out = append(out, variable...)
	}
	return out
}

// Next returns the single "do next" recommendation, the head of Order.
func (e *Engine) Next(ctx context.Context, tasks []*todoist.Task) (Candidate, bool) {
	ordered := e.Order(ctx, tasks)
	if len(ordered) == 0 {
		return Candidate{}, false
	}
	return ordered[0], true
}

// gather projects incomplete tasks with a resolvable due time into
// candidates. Date-only tasks are anchored to end-of-day for ordering only.
func (e *Engine) gather(ctx context.Context, tasks []*todoist.Task, now time.Time) []Candidate {
	var out []Candidate
	for _, t := range tasks {
		if t.IsCompleted || t.IsTestFixture() {
			continue
		}
		due, ok := t.DueTime(now.Location())
		if !ok {
			continue
		}
		if t.IsDateOnly() {
			due = time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 59, 0, due.Location())
		}

		c := Candidate{
			ID:          t.ID,
			Content:     t.Content,
			Description: t.Description,
			Due:         due,
			IsRecurring: t.IsRecurring(),
			Priority:    t.Priority,
		}
		est := e.est.Estimate(ctx, t.Content, t.Description)
		c.Minutes = est.Minutes
		c.Fixed = est.Fixed
		out = append(out, c)
	}
	return out
}

func partition(candidates []Candidate, now time.Time) (overdue, today, upcoming []Candidate) {
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	for _, c := range candidates {
		switch {
		case c.Due.Before(now):
			overdue = append(overdue, c)
		case !c.Due.After(endOfToday):
			today = append(today, c)
		default:
			upcoming = append(upcoming, c)
		}
	}
	return overdue, today, upcoming
}

func split(bucket []Candidate) (fixed, variable []Candidate) {
	for _, c := range bucket {
		if c.Fixed {
			fixed = append(fixed, c)
		} else {
			variable = append(variable, c)
		}
	}
	return fixed, variable
}

// strategy is picked once per ordering call: Ranked when the inference
// service produced a usable id order, Unranked otherwise.
type strategy struct {
	ranked bool
	rank   map[string]int
}

func (s strategy) rankOf(id string) int {
	if r, ok := s.rank[id]; ok {
		return r
	}
	return len(s.rank)
}

func (s strategy) sortFixed(cs []Candidate) {
	if s.ranked {
		sort.SliceStable(cs, func(i, j int) bool {
			if cs[i].Minutes != cs[j].Minutes {
				return cs[i].Minutes < cs[j].Minutes
			}
			if ri, rj := s.rankOf(cs[i].ID), s.rankOf(cs[j].ID); ri != rj {
				return ri < rj
			}
			if !cs[i].Due.Equal(cs[j].Due) {
				return cs[i].Due.Before(cs[j].Due)
			}
			return cs[i].Priority > cs[j].Priority
		})
		return
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].Due.Equal(cs[j].Due) {
			return cs[i].Due.Before(cs[j].Due)
		}
		if cs[i].Minutes != cs[j].Minutes {
			return cs[i].Minutes < cs[j].Minutes
		}
		return cs[i].Priority > cs[j].Priority
	})
}

func (s strategy) sortVariable(cs []Candidate) {
	if s.ranked {
		sort.SliceStable(cs, func(i, j int) bool {
			if ri, rj := s.rankOf(cs[i].ID), s.rankOf(cs[j].ID); ri != rj {
				return ri < rj
			}
			if !cs[i].Due.Equal(cs[j].Due) {
				return cs[i].Due.Before(cs[j].Due)
			}
			return cs[i].Priority > cs[j].Priority
		})
		return
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].Due.Equal(cs[j].Due) {
			return cs[i].Due.Before(cs[j].Due)
		}
		return cs[i].Priority > cs[j].Priority
	})
}

// rank asks the inference service for a holistic ordering of the whole
// candidate list. Any failure or unusable answer selects the deterministic
// fallback.
func (e *Engine) rank(ctx context.Context, candidates []Candidate) strategy {
	if e.client == nil || len(candidates) < 2 {
		return strategy{}
	}

	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s priority=%d due=%s duration=%dm: %s\n",
			c.ID, c.Priority, c.Due.Format(time.RFC3339), c.Minutes, c.Content)
	}

	var ids []string
	err := e.client.ChatJSON(ctx, []llm.Message{
		llm.System("You order task lists. Reply with ONLY a JSON array of task id strings, best task to do next first."),
		llm.User("Order these tasks considering urgency, deadlines and effort:\n\n" + sb.String()),
	}, &ids)
	if err != nil || len(ids) == 0 {
		return strategy{}
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	rank := make(map[string]int)
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, seen := rank[id]; seen {
			continue
		}
		rank[id] = len(rank)
	}
	if len(rank) == 0 {
		return strategy{}
	}
	return strategy{ranked: true, rank: rank}
}
