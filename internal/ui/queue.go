package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/rocinante/internal/queue"
)

func (a *App) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Recommend the single task to work on now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.todoistClient().ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			candidate, ok := a.newQueue().Next(cmd.Context(), tasks)
			if !ok {
				fmt.Println("nothing to do: no pending tasks with a due date")
				return nil
			}

			fmt.Printf("%s %s\n", formatHeader("Do next:"), candidate.Content)
			fmt.Printf("  %s\n", formatMuted(describeCandidate(candidate, time.Now())))
			return nil
		},
	}
}

func (a *App) queueCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the full priority-ordered task queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.todoistClient().ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			ordered := a.newQueue().Order(cmd.Context(), tasks)
			if len(ordered) == 0 {
				fmt.Println("queue is empty")
				return nil
			}
			if limit > 0 && len(ordered) > limit {
				ordered = ordered[:limit]
			}

			now := time.Now()
			maxWidth := termWidth() - 40
			if maxWidth < 20 {
				maxWidth = 20
			}

			fmt.Println(formatHeader("Queue:"))
			for i, c := range ordered {
				content := c.Content
				if len(content) > maxWidth {
					content = content[:maxWidth-3] + "..."
				}
				kind := formatMuted("[var]")
				if c.Fixed {
					kind = formatFixed("[fix]")
				}
				fmt.Printf("  %2d. %s %-*s  %s\n", i+1, kind, maxWidth, content,
					formatMuted(describeCandidate(c, now)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many tasks (0 = all)")
	return cmd
}

// describeCandidate renders the due horizon, duration and priority of one
// queue entry.
func describeCandidate(c queue.Candidate, now time.Time) string {
	var horizon string
	switch {
	case c.Due.Before(now):
		horizon = "overdue since " + c.Due.Format("Jan 2 15:04")
	case c.Due.Year() == now.Year() && c.Due.YearDay() == now.YearDay():
		horizon = "today " + c.Due.Format("15:04")
	default:
		horizon = "due " + c.Due.Format("Jan 2 15:04")
	}
	return fmt.Sprintf("%s, %dm, p%d", horizon, c.Minutes, c.Priority)
}
