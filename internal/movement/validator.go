// Package movement decides whether an entity may travel in a direction and
// applies the per-tick advance.
package movement

import (
	"pacsim/internal/entity"
	"pacsim/internal/geom"
	"pacsim/internal/maze"
)

type Validator struct {
	Map *maze.Map
}

func New(m *maze.Map) Validator {
	return Validator{Map: m}
}

// Probe returns the entity's bounding box pushed toward dir until its
// leading edge reaches the cell boundary, plus one tick of travel.
func (v Validator) Probe(e *entity.Entity, dir entity.Direction) (geom.Rect, bool) {
	if !dir.IsMove() {
		return geom.Rect{}, false
	}
	dr, dc := dir.Delta()
	reach := geom.Vec{
		X: v.Map.CellWidth()/2 - e.HalfExtent.X + e.Velocity.X,
		Y: v.Map.CellHeight()/2 - e.HalfExtent.Y + e.Velocity.Y,
	}
	shift := geom.Vec{X: float64(dc) * reach.X, Y: float64(dr) * reach.Y}
	return e.Box().Shift(shift), true
}

// IsPositionallyValid reports whether the probe box stays inside the map
// and overlaps no boundary. Hidden jail bars still count as solid.
func (v Validator) IsPositionallyValid(e *entity.Entity, dir entity.Direction) bool {
	probe, ok := v.Probe(e, dir)
	if !ok {
		return false
	}
	if !probe.Within(v.Map.Bounds()) {
		return false
	}
	for _, b := range v.Map.Boundaries() {
		if probe.Overlaps(b.Box) {
			return false
		}
	}
	return true
}

// IsCellValid reports whether the neighbor cell toward dir exists and
// holds a movable symbol.
func (v Validator) IsCellValid(e *entity.Entity, dir entity.Direction) bool {
	if !dir.IsMove() {
		return false
	}
	next := e.Cell.Neighbor(dir)
	return v.Map.InBounds(next) && maze.IsMovable(v.Map.Symbol(next))
}

func (v Validator) IsValidMove(e *entity.Entity, dir entity.Direction) bool {
	return v.IsPositionallyValid(e, dir) && v.IsCellValid(e, dir)
}

// ValidMoves lists every direction that passes IsValidMove, in grid order.
func (v Validator) ValidMoves(e *entity.Entity) []entity.Direction {
	var moves []entity.Direction
	for _, dir := range maze.Directions {
		if v.IsValidMove(e, dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}

// Advance sets the direction and, when the way ahead is clear, translates
// the entity one tick, snaps it back onto the cell line and re-derives its
// cell. It reports whether the entity moved.
func (v Validator) Advance(e *entity.Entity, dir entity.Direction) bool {
	if e.Direction != dir {
		e.StraightSteps = 0
	}
	e.Direction = dir
	if !v.IsPositionallyValid(e, dir) {
		return false
	}
	e.Translate()
	e.Snap(v.Map)
	e.Sync(v.Map)
	e.StraightSteps++
	return true
}
