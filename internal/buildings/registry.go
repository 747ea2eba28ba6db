package buildings

import (
	"errors"
	"fmt"

	"github.com/talgya/hive-economy/internal/world"
)

var (
	// ErrOccupied is returned when placing onto a cell that holds a building.
	ErrOccupied = errors.New("cell occupied")
	// ErrNotFound is returned when no building exists at a position.
	ErrNotFound = errors.New("no building at position")
)

// Registry owns every placed building, indexed by grid position and kept in
// stable insertion order.
type Registry struct {
	byPos map[world.Coord]*Instance
	order []*Instance
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPos: make(map[world.Coord]*Instance)}
}

// Add registers b at b.Pos.
func (r *Registry) Add(b *Instance) error {
	if _, exists := r.byPos[b.Pos]; exists {
		return fmt.Errorf("%w at %s", ErrOccupied, b.Pos)
	}
	b.removed = false
	r.byPos[b.Pos] = b
	r.order = append(r.order, b)
	return nil
}

// Remove unregisters the building at pos and marks it removed so phase
// cursors holding it skip it.
func (r *Registry) Remove(pos world.Coord) (*Instance, error) {
	b, ok := r.byPos[pos]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNotFound, pos)
	}
	delete(r.byPos, pos)
	for i, o := range r.order {
		if o == b {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	b.removed = true
	return b, nil
}

// At returns the building at pos, or nil.
func (r *Registry) At(pos world.Coord) *Instance {
	return r.byPos[pos]
}

// Len returns the number of registered buildings.
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns a snapshot of every building in insertion order.
func (r *Registry) All() []*Instance {
	return r.filter(func(*Instance) bool { return true })
}

// Houses returns a snapshot of the house buildings in insertion order.
func (r *Registry) Houses() []*Instance {
	return r.filter(func(b *Instance) bool { return b.Def.IsHouse() })
}

// Producers returns a snapshot of the buildings taking part in the resource tick.
func (r *Registry) Producers() []*Instance {
	return r.filter(func(b *Instance) bool { return b.Def.IsProducer() })
}

// OfKind returns a snapshot of the buildings of kind k.
func (r *Registry) OfKind(k Kind) []*Instance {
	return r.filter(func(b *Instance) bool { return b.Def.Kind == k })
}

func (r *Registry) filter(keep func(*Instance) bool) []*Instance {
	out := make([]*Instance, 0, len(r.order))
	for _, b := range r.order {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// RefreshAccess re-derives RoadAccess for every non-road building at the
// given positions using hasAccess, and returns those whose flag changed.
func (r *Registry) RefreshAccess(positions []world.Coord, hasAccess func(world.Coord) bool) []*Instance {
	var changed []*Instance
	seen := make(map[world.Coord]bool, len(positions))
	for _, p := range positions {
		if seen[p] {
			continue
		}
		seen[p] = true
		b := r.byPos[p]
		if b == nil || b.Def.Kind == KindRoad || b.Def.Kind == KindObelisk {
			continue
		}
		access := hasAccess(p)
		if access != b.RoadAccess {
			b.RoadAccess = access
			changed = append(changed, b)
		}
	}
	return changed
}

// CountByKind returns how many buildings of each kind are registered.
func (r *Registry) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, b := range r.order {
		counts[b.Def.Kind]++
	}
	return counts
}
