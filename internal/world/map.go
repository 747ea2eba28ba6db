package world

import "fmt"

// Terrain types for grid cells.
type Terrain uint8

const (
	TerrainGrass  Terrain = iota // Buildable default ground
	TerrainMeadow                // Flowering ground, buildable
	TerrainForest                // Wooded ground, buildable
	TerrainRock                  // Rocky outcrop, buildable
	TerrainWater                 // Ponds and streams, not buildable
)

// Map holds the terrain of a bounded rectangular grid.
type Map struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Cells  []Terrain `json:"-"` // Row-major, Width*Height entries
}

// NewMap creates a grid of the given size covered in grass.
func NewMap(width, height int) *Map {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Map{
		Width:  width,
		Height: height,
		Cells:  make([]Terrain, width*height),
	}
}

// InBounds returns true if the coordinate lies on the grid.
// A nil map has no cells.
func (m *Map) InBounds(c Coord) bool {
	if m == nil {
		return false
	}
	return c.X >= 0 && c.Y >= 0 && c.X < m.Width && c.Y < m.Height
}

// Get returns the terrain at c and whether c is on the grid.
func (m *Map) Get(c Coord) (Terrain, bool) {
	if !m.InBounds(c) {
		return TerrainGrass, false
	}
	return m.Cells[c.Y*m.Width+c.X], true
}

// Set changes the terrain at c. Out-of-bounds coordinates are ignored.
func (m *Map) Set(c Coord, t Terrain) {
	if !m.InBounds(c) {
		return
	}
	m.Cells[c.Y*m.Width+c.X] = t
}

// IsWater reports whether c is an in-bounds water cell.
func (m *Map) IsWater(c Coord) bool {
	t, ok := m.Get(c)
	return ok && t == TerrainWater
}

// WaterWithin reports whether any water cell lies within Chebyshev radius r of c.
func (m *Map) WaterWithin(c Coord, r int) bool {
	for _, n := range c.Within(r) {
		if m.IsWater(n) {
			return true
		}
	}
	return false
}

// CellCount returns the total number of cells in the map.
func (m *Map) CellCount() int {
	return m.Width * m.Height
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d)", m.Width, m.Height)
}
