package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/hive-economy/internal/persistence"
)

func newRunsCommand() *cobra.Command {
	var events int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded simulation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			runs, err := db.Runs()
			if err != nil {
				return err
			}
			if err := printRuns(os.Stdout, runs); err != nil {
				return err
			}
			if events <= 0 || len(runs) == 0 {
				return nil
			}

			rows, err := db.RecentEvents(runs[0].RunID, events)
			if err != nil {
				return err
			}
			fmt.Printf("\nLatest events of %s:\n", runs[0].RunID)
			return printEvents(os.Stdout, rows)
		},
	}
	cmd.Flags().IntVar(&events, "events", 0, "Also show this many recent events of the newest run")
	return cmd
}

func printRuns(w io.Writer, runs []persistence.RunInfo) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Run", "Started", "Seed", "Map"}),
	)
	for _, r := range runs {
		if err := table.Append([]string{
			r.RunID,
			humanize.Time(r.StartedAt),
			fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%dx%d", r.Width, r.Height),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func printEvents(w io.Writer, rows []persistence.EventRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Cycle", "Kind", "Pos", "Building", "Level"}),
	)
	for _, e := range rows {
		if err := table.Append([]string{
			humanize.Comma(int64(e.Cycle)),
			e.Kind,
			fmt.Sprintf("(%d,%d)", e.X, e.Y),
			e.Building,
			fmt.Sprintf("%d", e.Level),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
