package engine

import (
	"log/slog"

	"github.com/talgya/hive-economy/internal/buildings"
)

// upgradeEligible reports whether b may attempt its next level. Scanning
// never reserves or consumes resources.
func (s *Simulation) upgradeEligible(b *buildings.Instance) bool {
	if b.Removed() || b.IsTerminal() {
		return false
	}
	if b.Def.RequiresRoad && !b.RoadAccess {
		return false
	}
	return s.research.Has(b.Def.ResearchFor(b.Level + 1))
}

// upgrade pays the next level's cost and advances b one level. Returns false
// when the ledger cannot cover the cost; the building stays eligible and is
// retried next cycle.
func (s *Simulation) upgrade(b *buildings.Instance) bool {
	delta := b.NextDelta()
	if delta == nil || b.Removed() {
		return false
	}
	if !s.ledger.TryConsume(delta.UpgradeCost) {
		return false
	}
	b.LevelUp()

	slog.Debug("building upgraded",
		"building", b.Def.ID,
		"pos", b.Pos.String(),
		"level", b.Level,
		"cost", delta.UpgradeCost.String(),
	)
	s.emit(ChangeLevel, b)
	return true
}
