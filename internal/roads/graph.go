// Package roads maintains the road network and its reachability from the
// obelisk. Every topology change triggers a full breadth-first recompute.
package roads

import (
	"errors"
	"sort"

	"github.com/talgya/hive-economy/internal/world"
)

// ErrRootIsRoad is returned when the obelisk is placed on a road cell.
var ErrRootIsRoad = errors.New("obelisk position is a road cell")

// Cell is a road cell and its cached reachability.
type Cell struct {
	Pos       world.Coord `json:"pos"`
	Connected bool        `json:"connected"`
}

// ChangeFunc receives the positions whose road access may have changed:
// every cell whose connected flag flipped, every removed cell, and the
// 4-neighbors of both.
type ChangeFunc func(affected []world.Coord)

// Graph is the set of road cells plus the obelisk root.
type Graph struct {
	cells   map[world.Coord]bool // road cell → connected to the obelisk
	root    world.Coord
	hasRoot bool

	onChange ChangeFunc
	removed  []world.Coord // cells removed since the last recompute
}

// NewGraph creates an empty road network with no obelisk.
func NewGraph() *Graph {
	return &Graph{cells: make(map[world.Coord]bool)}
}

// OnChange installs the listener notified after each recompute.
func (g *Graph) OnChange(fn ChangeFunc) {
	g.onChange = fn
}

// RegisterRoad inserts a road cell and recomputes reachability.
// Registering an existing cell is a no-op.
func (g *Graph) RegisterRoad(pos world.Coord) error {
	if g.hasRoot && pos == g.root {
		return ErrRootIsRoad
	}
	if _, exists := g.cells[pos]; exists {
		return nil
	}
	g.cells[pos] = false
	g.Recalculate()
	return nil
}

// UnregisterRoad removes a road cell and its cache entry, then recomputes.
// Unknown cells are ignored.
func (g *Graph) UnregisterRoad(pos world.Coord) {
	wasConnected, exists := g.cells[pos]
	if !exists {
		return
	}
	delete(g.cells, pos)
	if wasConnected {
		g.removed = append(g.removed, pos)
	}
	g.Recalculate()
}

// RegisterObelisk sets the root of the network and recomputes.
// A previous root is replaced.
func (g *Graph) RegisterObelisk(pos world.Coord) error {
	if _, isRoad := g.cells[pos]; isRoad {
		return ErrRootIsRoad
	}
	g.root = pos
	g.hasRoot = true
	g.Recalculate()
	return nil
}

// UnregisterObelisk clears the root; every road cell becomes disconnected.
func (g *Graph) UnregisterObelisk() {
	if !g.hasRoot {
		return
	}
	g.hasRoot = false
	g.Recalculate()
}

// Root returns the obelisk position and whether one is registered.
func (g *Graph) Root() (world.Coord, bool) {
	if g == nil {
		return world.Coord{}, false
	}
	return g.root, g.hasRoot
}

// Recalculate recomputes the connected flag of every road cell by BFS from
// the obelisk's road neighbors and notifies the change listener.
func (g *Graph) Recalculate() {
	reached := g.reachable()

	var changed []world.Coord
	for pos, was := range g.cells {
		now := reached[pos]
		if now != was {
			g.cells[pos] = now
			changed = append(changed, pos)
		}
	}

	affected := expand(append(changed, g.removed...))
	g.removed = g.removed[:0]

	if g.onChange != nil && len(affected) > 0 {
		g.onChange(affected)
	}
}

// reachable returns the set of road cells reachable from the root.
func (g *Graph) reachable() map[world.Coord]bool {
	visited := make(map[world.Coord]bool, len(g.cells))
	if !g.hasRoot {
		return visited
	}

	queue := make([]world.Coord, 0, len(g.cells))
	for _, n := range g.root.Neighbors() {
		if _, isRoad := g.cells[n]; !isRoad || visited[n] {
			continue
		}
		visited[n] = true
		queue = append(queue, n)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, n := range p.Neighbors() {
			if visited[n] {
				continue
			}
			if _, isRoad := g.cells[n]; !isRoad {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return visited
}

// expand returns positions plus their 4-neighbors, deduplicated and sorted
// row-major for deterministic notification order.
func expand(positions []world.Coord) []world.Coord {
	if len(positions) == 0 {
		return nil
	}
	seen := make(map[world.Coord]bool, len(positions)*5)
	out := make([]world.Coord, 0, len(positions)*5)
	add := func(c world.Coord) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, p := range positions {
		add(p)
		for _, n := range p.Neighbors() {
			add(n)
		}
	}
	sortCoords(out)
	return out
}

func sortCoords(cs []world.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}

// IsRoad reports whether pos is a registered road cell.
func (g *Graph) IsRoad(pos world.Coord) bool {
	if g == nil {
		return false
	}
	_, ok := g.cells[pos]
	return ok
}

// IsConnected reports whether pos is a road cell reachable from the obelisk.
// Unknown positions and a nil graph report false.
func (g *Graph) IsConnected(pos world.Coord) bool {
	if g == nil {
		return false
	}
	return g.cells[pos]
}

// HasAccess reports whether any 4-neighbor of pos is a connected road cell.
func (g *Graph) HasAccess(pos world.Coord) bool {
	if g == nil {
		return false
	}
	for _, n := range pos.Neighbors() {
		if g.cells[n] {
			return true
		}
	}
	return false
}

// Len returns the number of road cells.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Cells returns every road cell sorted row-major.
func (g *Graph) Cells() []Cell {
	if g == nil {
		return nil
	}
	positions := make([]world.Coord, 0, len(g.cells))
	for p := range g.cells {
		positions = append(positions, p)
	}
	sortCoords(positions)
	out := make([]Cell, len(positions))
	for i, p := range positions {
		out[i] = Cell{Pos: p, Connected: g.cells[p]}
	}
	return out
}

// ConnectedCount returns how many road cells reach the obelisk.
func (g *Graph) ConnectedCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}
