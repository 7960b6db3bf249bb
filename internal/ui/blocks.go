package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/rocinante/internal/dateutil"
	"github.com/javiermolinar/rocinante/internal/lifeblock"
)

func (a *App) blocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Manage life blocks (unavailable windows)",
		Long: `Life blocks declare windows during which no task may be scheduled,
either on a specific date or recurring weekly.

Examples:
  rocinante blocks list
  rocinante blocks add --date 2025-01-10 --start 09:00 --end 10:00 --label gym
  rocinante blocks add --days mon,wed,fri --start 18:00 --end 19:00 --label dinner
  rocinante blocks remove weekly 2`,
	}

	cmd.AddCommand(a.blocksListCmd())
	cmd.AddCommand(a.blocksAddCmd())
	cmd.AddCommand(a.blocksRemoveCmd())
	return cmd
}

func (a *App) blocksStore() *lifeblock.Store {
	return lifeblock.NewStore(a.config.Storage.BlocksPath)
}

func (a *App) blocksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared life blocks",
		RunE: func(_ *cobra.Command, _ []string) error {
			blocks := a.blocksStore().Load()
			if len(blocks.OneOff) == 0 && len(blocks.Weekly) == 0 {
				fmt.Println("no life blocks declared")
				return nil
			}

			if len(blocks.OneOff) > 0 {
				fmt.Println(formatHeader("One-off:"))
				for i, b := range blocks.OneOff {
					fmt.Printf("  %2d. %s %s-%s  %s\n", i+1, b.Date, b.Start, b.End, b.Label)
				}
			}
			if len(blocks.Weekly) > 0 {
				fmt.Println(formatHeader("Weekly:"))
				for i, b := range blocks.Weekly {
					fmt.Printf("  %2d. %s %s-%s  %s\n", i+1, strings.Join(b.Days, ","), b.Start, b.End, b.Label)
				}
			}
			return nil
		},
	}
}

func (a *App) blocksAddCmd() *cobra.Command {
	var (
		date  string
		days  []string
		start string
		end   string
		label string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a life block",
		RunE: func(_ *cobra.Command, _ []string) error {
			if (date == "") == (len(days) == 0) {
				return errors.New("exactly one of --date or --days is required")
			}
			if start == "" || end == "" {
				return errors.New("--start and --end are required")
			}

			store := a.blocksStore()
			blocks := store.Load()

			if date != "" {
				resolved, err := dateutil.ParseRelativeDate(date, time.Now())
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
				blocks.OneOff = append(blocks.OneOff, lifeblock.OneOff{
					Date: resolved.Format("2006-01-02"), Start: start, End: end, Label: label,
				})
			} else {
				blocks.Weekly = append(blocks.Weekly, lifeblock.Weekly{
					Days: days, Start: start, End: end, Label: label,
				})
			}

			if err := store.Save(blocks); err != nil {
				return err
			}
			fmt.Println(formatOK("life block added"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "One-off block date (YYYY-MM-DD, today, tomorrow, next-monday, ...)")
	cmd.Flags().StringSliceVar(&days, "days", nil, "Weekly block days (e.g. mon,wed,fri)")
	cmd.Flags().StringVar(&start, "start", "", "Block start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "Block end (HH:MM)")
	cmd.Flags().StringVar(&label, "label", "", "Block label")
	return cmd
}

func (a *App) blocksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <oneoff|weekly> <number>",
		Short: "Remove a life block by its list number",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 1 {
				return fmt.Errorf("invalid block number %q", args[1])
			}

			store := a.blocksStore()
			blocks := store.Load()

			switch strings.ToLower(args[0]) {
			case "oneoff", "one-off":
				if index > len(blocks.OneOff) {
					return fmt.Errorf("no one-off block %d", index)
				}
				blocks.OneOff = append(blocks.OneOff[:index-1], blocks.OneOff[index:]...)
			case "weekly":
				if index > len(blocks.Weekly) {
					return fmt.Errorf("no weekly block %d", index)
				}
				blocks.Weekly = append(blocks.Weekly[:index-1], blocks.Weekly[index:]...)
			default:
				return fmt.Errorf("unknown block kind %q (want oneoff or weekly)", args[0])
			}

			if err := store.Save(blocks); err != nil {
				return err
			}
			fmt.Println(formatOK("life block removed"))
			return nil
		},
	}
}
