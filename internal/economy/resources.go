// Package economy provides resource bundles and the settlement resource ledger.
package economy

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Resource identifies a stockpiled good.
type Resource string

const (
	Tools      Resource = "tools"
	Wax        Resource = "wax"
	Honey      Resource = "honey"
	Pollen     Resource = "pollen"
	Nectar     Resource = "nectar"
	Water      Resource = "water"
	Wood       Resource = "wood"
	Stone      Resource = "stone"
	Clay       Resource = "clay"
	Grain      Resource = "grain"
	Flour      Resource = "flour"
	Bread      Resource = "bread"
	Mead       Resource = "mead"
	Candles    Resource = "candles"
	RoyalJelly Resource = "royal_jelly"
	Propolis   Resource = "propolis"
	Coins      Resource = "coins"
)

// AllResources returns every known resource in deterministic order.
func AllResources() []Resource {
	return []Resource{
		Tools, Wax, Honey, Pollen, Nectar, Water, Wood, Stone, Clay,
		Grain, Flour, Bread, Mead, Candles, RoyalJelly, Propolis, Coins,
	}
}

// Known reports whether r is one of the built-in resources.
func Known(r Resource) bool {
	for _, k := range AllResources() {
		if k == r {
			return true
		}
	}
	return false
}

// Bundle maps resources to quantities. A nil Bundle is an empty bundle.
type Bundle map[Resource]float64

// Clone returns an independent copy of b.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for r, q := range b {
		out[r] = q
	}
	return out
}

// Add merges other into b additively and returns b.
// A nil receiver is replaced by a fresh bundle.
func (b Bundle) Add(other Bundle) Bundle {
	if b == nil {
		b = make(Bundle, len(other))
	}
	for r, q := range other {
		b[r] += q
	}
	return b
}

// Scale returns a new bundle with every quantity multiplied by f.
func (b Bundle) Scale(f float64) Bundle {
	out := make(Bundle, len(b))
	for r, q := range b {
		out[r] = q * f
	}
	return out
}

// IsZero reports whether the bundle holds no positive quantity.
func (b Bundle) IsZero() bool {
	for _, q := range b {
		if q > 0 {
			return false
		}
	}
	return true
}

// Resources returns the bundle's keys sorted, for deterministic iteration.
func (b Bundle) Resources() []Resource {
	keys := make([]Resource, 0, len(b))
	for r := range b {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// String renders the bundle as "honey=30 wax=10".
func (b Bundle) String() string {
	parts := make([]string, 0, len(b))
	for _, r := range b.Resources() {
		parts = append(parts, string(r)+"="+humanize.Ftoa(b[r]))
	}
	return strings.Join(parts, " ")
}
