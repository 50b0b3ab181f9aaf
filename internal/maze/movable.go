package maze

import "pacsim/internal/geom"

// CellState classifies a cell for pathfinding and validity checks.
type CellState uint8

const (
	Movable CellState = iota
	Blocked
	ProximityRestricted
)

func (s CellState) String() string {
	switch s {
	case Movable:
		return "movable"
	case Blocked:
		return "blocked"
	case ProximityRestricted:
		return "proximity_restricted"
	default:
		return "unknown"
	}
}

// MovableGrid has the same shape as the symbol grid it was derived from.
type MovableGrid [][]CellState

func (g MovableGrid) Rows() int { return len(g) }

func (g MovableGrid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g MovableGrid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows() && c.Col >= 0 && c.Col < g.Cols()
}

// At returns Blocked for out-of-range cells.
func (g MovableGrid) At(c Cell) CellState {
	if !g.InBounds(c) {
		return Blocked
	}
	return g[c.Row][c.Col]
}

// ProximityPolicy marks cells near ghosts as restricted for evading agents.
type ProximityPolicy struct {
	Ghosts []Cell
	Player Cell
	// Radius is the Chebyshev exclusion distance around each ghost.
	Radius int
}

// Movable returns the grid built by the last recompute or jail toggle.
func (m *Map) Movable() MovableGrid {
	return m.movable
}

// RecomputeMovableGrid rebuilds the classification from the symbols. With a
// policy, cells within Radius of a ghost on the side facing the player become
// ProximityRestricted; the player's own cell never does.
func (m *Map) RecomputeMovableGrid(policy *ProximityPolicy) MovableGrid {
	grid := make(MovableGrid, m.Rows())
	for r, row := range m.grid {
		grid[r] = make([]CellState, len(row))
		for c, sym := range row {
			if IsMovable(sym) {
				grid[r][c] = Movable
			} else {
				grid[r][c] = Blocked
			}
		}
	}

	if policy != nil && policy.Radius >= 0 {
		for _, ghost := range policy.Ghosts {
			restrictAround(grid, ghost, policy.Player, policy.Radius)
		}
	}

	m.movable = grid
	return grid
}

func restrictAround(grid MovableGrid, ghost, player Cell, radius int) {
	rowSide := sign(player.Row - ghost.Row)
	colSide := sign(player.Col - ghost.Col)

	for r := ghost.Row - radius; r <= ghost.Row+radius; r++ {
		if rowSide*(r-ghost.Row) < 0 {
			continue
		}
		for c := ghost.Col - radius; c <= ghost.Col+radius; c++ {
			if colSide*(c-ghost.Col) < 0 {
				continue
			}
			cell := Cell{Row: r, Col: c}
			if cell == player || !grid.InBounds(cell) {
				continue
			}
			if grid[r][c] == Movable {
				grid[r][c] = ProximityRestricted
			}
		}
	}
}

// ChebyshevDistance is the king-move distance between two cells.
func ChebyshevDistance(a, b Cell) int {
	return max(geom.Abs(a.Row-b.Row), geom.Abs(a.Col-b.Col))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
