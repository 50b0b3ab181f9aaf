package maze

import (
	"errors"
	"math"

	"pacsim/internal/geom"
)

var ErrInvalidCellSize = errors.New("cell width and height must be > 0")

// Boundary is the solid box occupying one non-movable cell.
type Boundary struct {
	Symbol rune      `json:"symbol"`
	Cell   Cell      `json:"cell"`
	Box    geom.Rect `json:"box"`
	// Hidden marks a temporarily opened jail bar: still solid, not drawn.
	Hidden bool `json:"hidden,omitempty"`
}

// Map owns the episode's grid, its movable classification and every
// boundary object.
type Map struct {
	grid       Blueprint
	cellWidth  float64
	cellHeight float64
	boundaries []Boundary
	jailCells  []Cell
	movable    MovableGrid
	barrierSet bool
}

// Build parses the blueprint once into boundaries and jail locations.
// The blueprint is copied; later jail toggles never touch the caller's value.
func Build(bp Blueprint, cellWidth, cellHeight int) (*Map, error) {
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, ErrInvalidCellSize
	}

	m := &Map{
		grid:       bp.Clone(),
		cellWidth:  float64(cellWidth),
		cellHeight: float64(cellHeight),
	}
	for r, row := range m.grid {
		for c, sym := range row {
			if IsMovable(sym) {
				continue
			}
			cell := Cell{Row: r, Col: c}
			m.boundaries = append(m.boundaries, m.newBoundary(sym, cell))
			if IsJail(sym) {
				m.jailCells = append(m.jailCells, cell)
			}
		}
	}
	m.RecomputeMovableGrid(nil)
	return m, nil
}

func (m *Map) newBoundary(sym rune, cell Cell) Boundary {
	origin := m.CellToPixel(cell, geom.Vec{})
	return Boundary{
		Symbol: sym,
		Cell:   cell,
		Box: geom.Rect{
			Left:   origin.X,
			Top:    origin.Y,
			Right:  origin.X + m.cellWidth,
			Bottom: origin.Y + m.cellHeight,
		},
		Hidden: sym == SymbolJailOpen,
	}
}

func (m *Map) Rows() int { return m.grid.Rows() }
func (m *Map) Cols() int { return m.grid.Cols() }

func (m *Map) CellWidth() float64  { return m.cellWidth }
func (m *Map) CellHeight() float64 { return m.cellHeight }

// CellSize returns the cell extent as a vector.
func (m *Map) CellSize() geom.Vec {
	return geom.Vec{X: m.cellWidth, Y: m.cellHeight}
}

// Bounds is the pixel rectangle covered by the grid.
func (m *Map) Bounds() geom.Rect {
	return geom.Rect{
		Right:  m.cellWidth * float64(m.Cols()),
		Bottom: m.cellHeight * float64(m.Rows()),
	}
}

func (m *Map) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < m.Rows() && c.Col >= 0 && c.Col < m.Cols()
}

// Symbol returns the current symbol at c, or 0 when c is out of range.
func (m *Map) Symbol(c Cell) rune {
	if !m.InBounds(c) {
		return 0
	}
	return m.grid[c.Row][c.Col]
}

// Blueprint returns a copy of the current symbols, jail state included.
func (m *Map) Blueprint() Blueprint {
	return m.grid.Clone()
}

func (m *Map) Boundaries() []Boundary {
	return m.boundaries
}

func (m *Map) JailCells() []Cell {
	return append([]Cell(nil), m.jailCells...)
}

// PixelToCell floors a pixel position into the grid, clamping outliers to
// the nearest edge cell.
func (m *Map) PixelToCell(p geom.Vec) Cell {
	row := int(math.Floor(p.Y / m.cellHeight))
	col := int(math.Floor(p.X / m.cellWidth))
	return Cell{
		Row: geom.Clamp(row, 0, m.Rows()-1),
		Col: geom.Clamp(col, 0, m.Cols()-1),
	}
}

// CellToPixel maps a cell plus an in-cell offset in [0,1]^2 to pixels;
// {0,0} is the top-left corner and {0.5,0.5} the center.
func (m *Map) CellToPixel(c Cell, offset geom.Vec) geom.Vec {
	ox := geom.Clamp(offset.X, 0, 1)
	oy := geom.Clamp(offset.Y, 0, 1)
	return geom.Vec{
		X: m.cellWidth * (float64(c.Col) + ox),
		Y: m.cellHeight * (float64(c.Row) + oy),
	}
}

// CellCenter is CellToPixel with a centered offset.
func (m *Map) CellCenter(c Cell) geom.Vec {
	return m.CellToPixel(c, geom.Vec{X: 0.5, Y: 0.5})
}
