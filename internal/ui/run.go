package ui

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/rocinante/internal/scheduler"
)

func (a *App) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one scheduling pass",
		Long: `Runs the scheduler once: fetches tasks, reschedules overdue recurring
tasks, and places every task that is missing, overdue, or sitting on an
invalid slot.

Example:
  rocinante run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := a.newRunner()
			stats, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			printRun(time.Now(), stats, nil)
			return nil
		},
	}
}

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the scheduler on a fixed interval",
		Long: `Runs a scheduling pass immediately, then repeats on the configured
interval until interrupted. Runs never overlap: a pass always finishes
before the next one starts.

Example:
  rocinante watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := a.newRunner()
			fmt.Printf("watching every %dm, press Ctrl+C to stop\n", a.config.Schedule.RunIntervalMinutes)

			err := runner.Watch(ctx, func(stats *scheduler.Stats, err error) {
				printRun(time.Now(), stats, err)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func (a *App) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scheduling runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.openStore()
			if store == nil {
				return errors.New("run history requires storage")
			}

			recs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no runs recorded yet")
				return nil
			}

			fmt.Println(formatHeader("Recent runs:"))
			for _, rec := range recs {
				line := fmt.Sprintf("  %s  fetched=%d rescheduled=%d placed=%d skipped=%d (%s)",
					rec.Started.Local().Format("2006-01-02 15:04"),
					rec.Fetched, rec.Rescheduled, rec.Placed, rec.Skipped,
					rec.Duration.Round(time.Millisecond))
				if rec.LastError != "" {
					fmt.Printf("%s  %s\n", line, formatErr(rec.LastError))
				} else {
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

// printRun prints one run outcome as a single status line plus errors.
func printRun(at time.Time, stats *scheduler.Stats, err error) {
	stamp := formatMuted(at.Format("15:04:05"))

	if err != nil {
		fmt.Printf("%s  %s\n", stamp, formatErr(fmt.Sprintf("run failed: %v", err)))
		return
	}

	line := fmt.Sprintf("fetched %d, rescheduled %d, placed %d, skipped %d",
		stats.Fetched, stats.Rescheduled, stats.Placed, stats.Skipped)
	if len(stats.Errors) == 0 {
		fmt.Printf("%s  %s\n", stamp, formatOK(line))
		return
	}

	fmt.Printf("%s  %s (%d errors)\n", stamp, line, len(stats.Errors))
	for _, e := range stats.Errors {
		fmt.Printf("          %s\n", formatErr(e.Error()))
	}
}
