// Package pathfind runs A* over a movable grid. Each caller picks which cell
// states are impassable, so ghosts and the evading bot share one search.
package pathfind

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"pacsim/internal/geom"
	"pacsim/internal/maze"
)

// Step is one cell of a path and the move that enters it.
type Step struct {
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Direction maze.Direction `json:"direction"`
}

func (s Step) Cell() maze.Cell {
	return maze.Cell{Row: s.Row, Col: s.Col}
}

// WallsOnly treats only walls as impassable.
func WallsOnly() mapset.Set[maze.CellState] {
	blocked := mapset.New[maze.CellState]()
	blocked.Put(maze.Blocked)
	return blocked
}

// AvoidGhosts also refuses cells restricted by ghost proximity.
func AvoidGhosts() mapset.Set[maze.CellState] {
	blocked := WallsOnly()
	blocked.Put(maze.ProximityRestricted)
	return blocked
}

func ManhattanDistance(a, b maze.Cell) int {
	return geom.Abs(a.Row-b.Row) + geom.Abs(a.Col-b.Col)
}

type node struct {
	cell maze.Cell
	g    int
	h    int
	seq  int
}

func (n node) f() int { return n.g + n.h }

func less(a, b node) bool {
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

// FindPath returns the steps from src (excluded) to dst (included). The
// result is empty, never nil, when src equals dst, when either end lies
// outside the grid or when dst is unreachable.
func FindPath(src, dst maze.Cell, grid maze.MovableGrid, blocked mapset.Set[maze.CellState]) []Step {
	path := []Step{}
	if src == dst || !grid.InBounds(src) || !grid.InBounds(dst) {
		return path
	}

	rows, cols := grid.Rows(), grid.Cols()
	index := func(c maze.Cell) int { return c.Row*cols + c.Col }

	best := make([]int, rows*cols)
	for i := range best {
		best[i] = -1
	}
	parent := make([]int, rows*cols)
	via := make([]maze.Direction, rows*cols)
	closed := make([]bool, rows*cols)

	frontier := heap.New[node](less)
	seq := 0
	best[index(src)] = 0
	parent[index(src)] = -1
	frontier.Push(node{cell: src, h: ManhattanDistance(src, dst), seq: seq})

	for expansions := 0; frontier.Size() > 0 && expansions < rows*cols; {
		cur, _ := frontier.Pop()
		ci := index(cur.cell)
		if closed[ci] || cur.g != best[ci] {
			continue
		}
		if cur.cell == dst {
			return reconstruct(cur.cell, parent, via, cols)
		}
		closed[ci] = true
		expansions++

		for _, dir := range maze.Directions {
			next := cur.cell.Neighbor(dir)
			if !grid.InBounds(next) || blocked.Has(grid.At(next)) {
				continue
			}
			ni := index(next)
			if closed[ni] {
				continue
			}
			g := cur.g + 1
			if best[ni] >= 0 && g >= best[ni] {
				continue
			}
			best[ni] = g
			parent[ni] = ci
			via[ni] = dir
			seq++
			frontier.Push(node{cell: next, g: g, h: ManhattanDistance(next, dst), seq: seq})
		}
	}
	return path
}

func reconstruct(dst maze.Cell, parent []int, via []maze.Direction, cols int) []Step {
	var reversed []Step
	i := dst.Row*cols + dst.Col
	for parent[i] >= 0 {
		reversed = append(reversed, Step{Row: i / cols, Col: i % cols, Direction: via[i]})
		i = parent[i]
	}
	path := make([]Step, len(reversed))
	for k, step := range reversed {
		path[len(reversed)-1-k] = step
	}
	return path
}
