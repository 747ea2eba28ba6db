// Package buildings provides building definitions, placed building instances,
// and the registry that owns their lifecycle.
package buildings

import (
	"github.com/talgya/hive-economy/internal/economy"
)

// Kind classifies what role a building type plays in the settlement.
type Kind string

const (
	KindHouse    Kind = "house"    // Shelters residents who form the worker pool
	KindProducer Kind = "producer" // Converts inputs to outputs each tick
	KindService  Kind = "service"  // Civic buildings; may consume upkeep
	KindRoad     Kind = "road"     // Road cell in the connectivity graph
	KindObelisk  Kind = "obelisk"  // Root of the road network
)

// MaxLevels caps how many tiers any building type may define.
const MaxLevels = 4

// LevelDelta describes what reaching one level above the previous adds.
type LevelDelta struct {
	AddedConsumption economy.Bundle `yaml:"added_consumption" json:"added_consumption,omitempty"`
	ProductionBonus  economy.Bundle `yaml:"production_bonus" json:"production_bonus,omitempty"`
	AddedHousing     int            `yaml:"added_housing" json:"added_housing,omitempty" validate:"min=0"`
	UpgradeCost      economy.Bundle `yaml:"upgrade_cost" json:"upgrade_cost,omitempty"`
	Research         string         `yaml:"research" json:"research,omitempty"` // Empty = no research required
}

// Definition is the immutable description of a building type.
type Definition struct {
	ID              string         `yaml:"id" json:"id" validate:"required"`
	Name            string         `yaml:"name" json:"name"`
	Kind            Kind           `yaml:"kind" json:"kind" validate:"required,oneof=house producer service road obelisk"`
	Cost            economy.Bundle `yaml:"cost" json:"cost,omitempty"`
	WorkersRequired int            `yaml:"workers_required" json:"workers_required" validate:"min=0"`
	Noisy           bool           `yaml:"noisy" json:"noisy"`
	NeedsWater      bool           `yaml:"needs_water" json:"needs_water"`
	RequiresRoad    bool           `yaml:"requires_road" json:"requires_road"`
	Consumption     economy.Bundle `yaml:"consumption" json:"consumption,omitempty"`
	Production      economy.Bundle `yaml:"production" json:"production,omitempty"`
	Housing         int            `yaml:"housing" json:"housing,omitempty" validate:"min=0"`
	Levels          []LevelDelta   `yaml:"levels" json:"levels,omitempty" validate:"max=3,dive"`
}

// MaxLevel returns the terminal level for this type (1 when no deltas).
func (d *Definition) MaxLevel() int {
	return 1 + len(d.Levels)
}

// Delta returns the delta that unlocks level, or nil for level 1 and
// levels beyond MaxLevel.
func (d *Definition) Delta(level int) *LevelDelta {
	if level < 2 || level > d.MaxLevel() {
		return nil
	}
	return &d.Levels[level-2]
}

// ResearchFor returns the research id gating level. Types that define none
// return "", meaning no research is required.
func (d *Definition) ResearchFor(level int) string {
	if delta := d.Delta(level); delta != nil {
		return delta.Research
	}
	return ""
}

// EffectiveAt sums the base tables with every delta for levels 2..level.
// level is clamped to [1, MaxLevel].
func (d *Definition) EffectiveAt(level int) (consumption, production economy.Bundle, housing int) {
	if level > d.MaxLevel() {
		level = d.MaxLevel()
	}
	consumption = d.Consumption.Clone()
	production = d.Production.Clone()
	housing = d.Housing
	for l := 2; l <= level; l++ {
		delta := d.Delta(l)
		consumption = consumption.Add(delta.AddedConsumption)
		production = production.Add(delta.ProductionBonus)
		housing += delta.AddedHousing
	}
	return consumption, production, housing
}

// IsProducer reports whether the type takes part in the resource tick at any level.
func (d *Definition) IsProducer() bool {
	if d.Kind == KindRoad || d.Kind == KindObelisk {
		return false
	}
	if len(d.Consumption) > 0 || len(d.Production) > 0 {
		return true
	}
	for _, l := range d.Levels {
		if len(l.AddedConsumption) > 0 || len(l.ProductionBonus) > 0 {
			return true
		}
	}
	return false
}

// IsHouse reports whether the type shelters residents.
func (d *Definition) IsHouse() bool {
	return d.Kind == KindHouse
}
