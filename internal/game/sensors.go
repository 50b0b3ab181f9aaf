package game

import (
	"math"

	"pacsim/internal/geom"
	"pacsim/internal/maze"
)

// InputCount is the length of the vector returned by Inputs.
const InputCount = 14

// Inputs is the sensor vector fed to a neural controller: the player's
// position normalized by the canvas, then per direction (up, down, left,
// right) the cell distance to the nearest pellet in line, the same for
// ghosts, and the distance to an adjacent wall.
func (e *Episode) Inputs() []float64 {
	bounds := e.m.Bounds()
	inputs := make([]float64, 0, InputCount)
	inputs = append(inputs,
		e.player.Position.X/bounds.Right,
		e.player.Position.Y/bounds.Bottom,
	)

	pellets := lineDistances(e.player.Cell, pelletCells(e.pellets))
	inputs = append(inputs, pellets[:]...)

	ghostCells := make([]maze.Cell, len(e.ghosts))
	for i, g := range e.ghosts {
		ghostCells[i] = g.Cell
	}
	ghosts := lineDistances(e.player.Cell, ghostCells)
	inputs = append(inputs, ghosts[:]...)

	walls := e.wallDistances()
	inputs = append(inputs, walls[:]...)
	return inputs
}

func pelletCells(pellets []Pellet) []maze.Cell {
	cells := make([]maze.Cell, len(pellets))
	for i, p := range pellets {
		cells[i] = p.Cell
	}
	return cells
}

// lineDistances returns, for up, down, left and right, the cell distance to
// the nearest target sharing a row or column with from, or -1 when none.
func lineDistances(from maze.Cell, targets []maze.Cell) [4]float64 {
	best := [4]int{math.MaxInt, math.MaxInt, math.MaxInt, math.MaxInt}
	for _, t := range targets {
		switch {
		case t.Col == from.Col && t.Row < from.Row:
			best[0] = min(best[0], from.Row-t.Row)
		case t.Col == from.Col && t.Row > from.Row:
			best[1] = min(best[1], t.Row-from.Row)
		case t.Row == from.Row && t.Col < from.Col:
			best[2] = min(best[2], from.Col-t.Col)
		case t.Row == from.Row && t.Col > from.Col:
			best[3] = min(best[3], t.Col-from.Col)
		}
	}
	var out [4]float64
	for i, d := range best {
		if d == math.MaxInt {
			out[i] = -1
		} else {
			out[i] = float64(d)
		}
	}
	return out
}

// wallDistances reports 1 for an open neighbor, the distance in cells to
// the facing wall edge otherwise, and 0 for distances under half a cell or
// neighbors outside the grid.
func (e *Episode) wallDistances() [4]float64 {
	var out [4]float64
	pos := e.player.Position
	for i, dir := range maze.Directions {
		next := e.player.Cell.Neighbor(dir)
		if !e.m.InBounds(next) {
			continue
		}
		if maze.IsMovable(e.m.Symbol(next)) {
			out[i] = 1
			continue
		}
		corner := e.m.CellToPixel(next, geom.Vec{})
		var d float64
		switch dir {
		case maze.Up:
			d = (pos.Y - (corner.Y + e.m.CellHeight())) / e.m.CellHeight()
		case maze.Down:
			d = (corner.Y - pos.Y) / e.m.CellHeight()
		case maze.Left:
			d = (pos.X - (corner.X + e.m.CellWidth())) / e.m.CellWidth()
		case maze.Right:
			d = (corner.X - pos.X) / e.m.CellWidth()
		}
		if d >= 0.5 {
			out[i] = d
		}
	}
	return out
}
