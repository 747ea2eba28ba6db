package engine

import (
	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/world"
)

// evaluateNeeds refreshes a house's Quiet and NeedsMet flags. A house's
// needs are met when it has road access, no noisy neighbor, water if its
// type needs it, and its upkeep was paid in the last resource tick.
func (s *Simulation) evaluateNeeds(h *buildings.Instance) {
	if h.Removed() {
		return
	}
	h.Quiet = s.quietAt(h.Pos)
	water := !h.Def.NeedsWater || h.WaterNearby
	h.NeedsMet = h.RoadAccess && h.Quiet && water && h.Supplied
}

func (s *Simulation) quietAt(pos world.Coord) bool {
	for _, c := range pos.Within(s.opts.NoiseRadius) {
		if b := s.registry.At(c); b != nil && b.Def.Noisy {
			return false
		}
	}
	return true
}
