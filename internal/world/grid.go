// Package world provides the square settlement grid and its terrain.
// Cells are addressed by integer (x, y) coordinates; adjacency is 4-connected.
package world

import "fmt"

// Coord is a cell position on the settlement grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// NeighborDirections defines the four orthogonal neighbor offsets (N, E, S, W).
var NeighborDirections = [4]Coord{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Neighbors returns the four orthogonally adjacent coordinates.
func (c Coord) Neighbors() [4]Coord {
	var result [4]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{X: c.X + dir.X, Y: c.Y + dir.Y}
	}
	return result
}

// String renders the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ChebyshevDistance returns the king-move distance between two cells.
func ChebyshevDistance(a, b Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Within returns every coordinate within Chebyshev radius r of c, excluding c.
func (c Coord) Within(r int) []Coord {
	if r <= 0 {
		return nil
	}
	out := make([]Coord, 0, (2*r+1)*(2*r+1)-1)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
