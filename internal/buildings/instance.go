package buildings

import (
	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/world"
)

// Instance is one placed building.
type Instance struct {
	Pos   world.Coord
	Def   *Definition
	Level int // Starts at 1, never decreases, capped at Def.MaxLevel()

	AssignedWorkers int  // 0..Def.WorkersRequired
	RoadAccess      bool // A 4-neighbor is a road connected to the obelisk
	WaterNearby     bool // Derived from terrain at placement
	Active          bool // Result of the last resource tick

	// House state, refreshed by the needs phase.
	Quiet    bool // No noisy building within the noise radius
	Supplied bool // Upkeep was paid in the last resource tick
	NeedsMet bool

	PlacedCycle uint64

	removed bool

	// Effective tables memoized for effLevel; effLevel 0 means stale.
	effLevel   int
	effCons    economy.Bundle
	effProd    economy.Bundle
	effHousing int
}

// NewInstance creates a level 1 instance of def at pos.
func NewInstance(def *Definition, pos world.Coord) *Instance {
	return &Instance{
		Pos:      pos,
		Def:      def,
		Level:    1,
		Supplied: true,
	}
}

// Removed reports whether the instance has left the registry.
func (b *Instance) Removed() bool {
	return b.removed
}

func (b *Instance) refresh() {
	if b.effLevel == b.Level {
		return
	}
	b.effCons, b.effProd, b.effHousing = b.Def.EffectiveAt(b.Level)
	b.effLevel = b.Level
}

// Effective returns the consumption and production tables for the current
// level. The returned bundles are shared; callers must not modify them.
func (b *Instance) Effective() (consumption, production economy.Bundle) {
	b.refresh()
	return b.effCons, b.effProd
}

// Housing returns the residents the building shelters at its current level.
func (b *Instance) Housing() int {
	b.refresh()
	return b.effHousing
}

// IsTerminal reports whether no level exists above the current one.
func (b *Instance) IsTerminal() bool {
	return b.Level >= b.Def.MaxLevel()
}

// NextDelta returns the delta for the next level, or nil at the terminal level.
func (b *Instance) NextDelta() *LevelDelta {
	return b.Def.Delta(b.Level + 1)
}

// LevelUp advances one level and invalidates the memoized tables.
// Returns false at the terminal level.
func (b *Instance) LevelUp() bool {
	if b.IsTerminal() {
		return false
	}
	b.Level++
	b.effLevel = 0
	return true
}

// Staffing returns the fraction of required workers assigned, in [0, 1].
// Buildings that need no workers are always fully staffed.
func (b *Instance) Staffing() float64 {
	req := b.Def.WorkersRequired
	if req == 0 {
		return 1
	}
	if b.AssignedWorkers <= 0 {
		return 0
	}
	if b.AssignedWorkers >= req {
		return 1
	}
	return float64(b.AssignedWorkers) / float64(req)
}
