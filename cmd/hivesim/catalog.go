package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/hive-economy/internal/buildings"
)

func newCatalogCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the building catalog",
		Long:  `Print every building type with its cost, staffing, flows and levels. --file merges YAML overrides over the defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				if cfg, err := loadConfig(); err == nil {
					path = cfg.Catalog.Path
				}
			}
			cat, err := buildings.LoadCatalog(path)
			if err != nil {
				return err
			}
			color.New(color.FgCyan, color.Bold).Printf("%d building types\n", cat.Len())
			return printCatalog(os.Stdout, cat)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "YAML catalog override file")
	return cmd
}

func printCatalog(w io.Writer, cat *buildings.Catalog) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Kind", "Cost", "Workers", "Consumes", "Produces", "Housing", "Levels", "Flags"}),
	)
	for _, d := range cat.All() {
		row := []string{
			d.ID,
			string(d.Kind),
			d.Cost.String(),
			strconv.Itoa(d.WorkersRequired),
			d.Consumption.String(),
			d.Production.String(),
			strconv.Itoa(d.Housing),
			levelSummary(d),
			flags(d),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// levelSummary lists the research gate of each upgrade, "-" when ungated.
func levelSummary(d *buildings.Definition) string {
	if len(d.Levels) == 0 {
		return "1"
	}
	gates := make([]string, 0, len(d.Levels))
	for lvl := 2; lvl <= d.MaxLevel(); lvl++ {
		r := d.ResearchFor(lvl)
		if r == "" {
			r = "-"
		}
		gates = append(gates, r)
	}
	return fmt.Sprintf("%d (%s)", d.MaxLevel(), strings.Join(gates, ", "))
}

func flags(d *buildings.Definition) string {
	var f []string
	if d.RequiresRoad {
		f = append(f, "road")
	}
	if d.NeedsWater {
		f = append(f, "water")
	}
	if d.Noisy {
		f = append(f, "noisy")
	}
	return strings.Join(f, ",")
}
