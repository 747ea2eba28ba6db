package watch

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var levelColors = map[string]*color.Color{
	LevelStalled:  color.New(color.FgRed, color.Bold),
	LevelStarving: color.New(color.FgRed),
	LevelWatch:    color.New(color.FgYellow),
	LevelHealthy:  color.New(color.FgGreen),
}

// Render prints a summary line and a resource table for one sample.
// Resources with no stock and no flow are left out.
func Render(w io.Writer, s *Sample, h *Health) error {
	c := levelColors[h.Level]
	if c == nil {
		c = color.New(color.Reset)
	}
	c.Fprintf(w, "[%s] ", h.Level)
	fmt.Fprintf(w, "cycle %s  phase %s  speed %gx  buildings %d  roads %d/%d  workers %d/%d  producers %d/%d\n",
		humanize.Comma(int64(s.Status.Cycle)), s.Status.Phase, s.Status.Speed,
		s.Status.Buildings, s.Status.ConnectedRoads, s.Status.Roads,
		s.Status.AssignedWorkers, s.Status.Workers,
		s.Status.ActiveProducers, s.Status.Producers,
	)

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Resource", "Amount", "+/cycle", "-/cycle", "Net"}),
	)
	for _, r := range s.Resources {
		if r.Amount == 0 && r.Produced == 0 && r.Consumed == 0 {
			continue
		}
		if err := table.Append([]string{
			string(r.Resource),
			humanize.FormatFloat("#,###.##", r.Amount),
			humanize.Ftoa(r.Produced),
			humanize.Ftoa(r.Consumed),
			fmt.Sprintf("%+.2f", r.Net()),
		}); err != nil {
			return fmt.Errorf("render row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	for _, sh := range h.Shortages {
		color.New(color.FgRed).Fprintf(w, "  %s runs out in %.1f cycles\n", sh.Resource, sh.CyclesToZero)
	}
	return nil
}
