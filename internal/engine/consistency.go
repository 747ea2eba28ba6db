package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/world"
)

// ErrInconsistent marks a mismatch between the registry and the road graph.
var ErrInconsistent = errors.New("inconsistent state")

// CheckConsistency compares road and obelisk buildings against the road
// graph. Each mismatch is logged and returned. Orphan road cells and an
// orphan root are dropped from the graph so they read as disconnected.
func (s *Simulation) CheckConsistency() []error {
	var errs []error

	roadAt := make(map[world.Coord]bool)
	for _, b := range s.registry.OfKind(buildings.KindRoad) {
		roadAt[b.Pos] = true
		if !s.graph.IsRoad(b.Pos) {
			errs = append(errs, fmt.Errorf("%w: road building at %s has no road cell", ErrInconsistent, b.Pos))
		}
	}
	for _, c := range s.graph.Cells() {
		if roadAt[c.Pos] {
			continue
		}
		errs = append(errs, fmt.Errorf("%w: road cell at %s has no building", ErrInconsistent, c.Pos))
		s.graph.UnregisterRoad(c.Pos)
	}

	root, hasRoot := s.graph.Root()
	obelisks := s.registry.OfKind(buildings.KindObelisk)
	switch {
	case len(obelisks) > 1:
		errs = append(errs, fmt.Errorf("%w: %d obelisks registered", ErrInconsistent, len(obelisks)))
	case len(obelisks) == 1 && (!hasRoot || root != obelisks[0].Pos):
		errs = append(errs, fmt.Errorf("%w: obelisk at %s is not the road root", ErrInconsistent, obelisks[0].Pos))
	case len(obelisks) == 0 && hasRoot:
		errs = append(errs, fmt.Errorf("%w: road root at %s has no obelisk", ErrInconsistent, root))
		s.graph.UnregisterObelisk()
	}

	for _, err := range errs {
		slog.Error("consistency check failed", "cycle", s.sched.Cycle(), "error", err)
	}
	return errs
}
