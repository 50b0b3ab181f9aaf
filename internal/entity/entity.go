// Package entity models the mobile actors of an episode: the player and the
// ghosts. An entity carries both a pixel position and the grid cell derived
// from it; Sync keeps the two consistent after every move.
package entity

import (
	"pacsim/internal/geom"
	"pacsim/internal/maze"
	"pacsim/internal/pathfind"
)

type Kind uint8

const (
	Player Kind = iota
	Ghost
)

func (k Kind) String() string {
	if k == Ghost {
		return "ghost"
	}
	return "player"
}

// Direction aliases the grid direction so callers rarely import maze for it.
type Direction = maze.Direction

const (
	None  = maze.None
	Up    = maze.Up
	Down  = maze.Down
	Left  = maze.Left
	Right = maze.Right
	Dying = maze.Dying
)

// Sizes relative to one cell.
const (
	PlayerRadius = 0.4
	GhostWidth   = 0.5
	GhostHeight  = 0.8
)

type Entity struct {
	Kind  Kind
	Index int

	Position geom.Vec
	// Velocity is the per-axis travel in pixels per tick.
	Velocity geom.Vec
	// HalfExtent is the player's ellipse radius or half the ghost box.
	HalfExtent geom.Vec
	Direction  Direction
	Cell       maze.Cell
	Origin     maze.Cell

	Path           []pathfind.Step
	Cursor         int
	TargetCell     maze.Cell
	TargetPosition geom.Vec
	// PathAge counts ticks since the last plan.
	PathAge int
	// StraightSteps counts consecutive advances without a direction change.
	StraightSteps int
}

// NewPlayer places a player at the center of origin.
func NewPlayer(m *maze.Map, origin maze.Cell, velocity geom.Vec) *Entity {
	e := &Entity{
		Kind:     Player,
		Velocity: velocity,
		HalfExtent: geom.Vec{
			X: m.CellWidth() * PlayerRadius,
			Y: m.CellHeight() * PlayerRadius,
		},
		Origin: origin,
	}
	e.Respawn(m)
	return e
}

// NewGhost places the index-th ghost at the center of origin.
func NewGhost(m *maze.Map, index int, origin maze.Cell, velocity geom.Vec) *Entity {
	e := &Entity{
		Kind:     Ghost,
		Index:    index,
		Velocity: velocity,
		HalfExtent: geom.Vec{
			X: m.CellWidth() * GhostWidth / 2,
			Y: m.CellHeight() * GhostHeight / 2,
		},
		Origin: origin,
	}
	e.Respawn(m)
	return e
}

// Box is the axis-aligned bounding box around the current position.
func (e *Entity) Box() geom.Rect {
	return geom.RectAround(e.Position, e.HalfExtent)
}

// Sync re-derives the grid cell from the pixel position.
func (e *Entity) Sync(m *maze.Map) {
	e.Cell = m.PixelToCell(e.Position)
}

// Snap centers the axis perpendicular to the current direction.
func (e *Entity) Snap(m *maze.Map) {
	center := m.CellCenter(m.PixelToCell(e.Position))
	switch {
	case e.Direction == Up || e.Direction == Down:
		e.Position.X = center.X
	case e.Direction == Left || e.Direction == Right:
		e.Position.Y = center.Y
	}
}

// Translate moves one tick along the current direction.
func (e *Entity) Translate() {
	switch e.Direction {
	case Up:
		e.Position.Y -= e.Velocity.Y
	case Down:
		e.Position.Y += e.Velocity.Y
	case Left:
		e.Position.X -= e.Velocity.X
	case Right:
		e.Position.X += e.Velocity.X
	}
}

// Respawn returns the entity to the center of its origin and drops any plan.
func (e *Entity) Respawn(m *maze.Map) {
	e.Position = m.CellCenter(e.Origin)
	e.Direction = None
	e.StraightSteps = 0
	e.Sync(m)
	e.ClearPath()
}

// SetPath installs a fresh plan with the cursor on its first step.
func (e *Entity) SetPath(m *maze.Map, path []pathfind.Step) {
	e.Path = path
	e.Cursor = 0
	e.PathAge = 0
	e.aim(m)
}

func (e *Entity) ClearPath() {
	e.Path = nil
	e.Cursor = 0
	e.PathAge = 0
	e.TargetCell = maze.Cell{}
	e.TargetPosition = geom.Vec{}
}

// HasPath reports whether steps remain ahead of the cursor.
func (e *Entity) HasPath() bool {
	return e.Cursor < len(e.Path)
}

// CurrentStep returns the step the entity is heading for.
func (e *Entity) CurrentStep() (pathfind.Step, bool) {
	if !e.HasPath() {
		return pathfind.Step{}, false
	}
	return e.Path[e.Cursor], true
}

// ReachedTarget is true when the entity sits in the target cell within
// one sixth of its horizontal half extent from the target center.
func (e *Entity) ReachedTarget() bool {
	if !e.HasPath() || e.Cell != e.TargetCell {
		return false
	}
	return e.Position.Dist(e.TargetPosition) < e.HalfExtent.X/6
}

// AdvanceCursor moves to the next step and reports whether one remains.
func (e *Entity) AdvanceCursor(m *maze.Map) bool {
	e.Cursor++
	e.aim(m)
	return e.HasPath()
}

func (e *Entity) aim(m *maze.Map) {
	step, ok := e.CurrentStep()
	if !ok {
		return
	}
	e.TargetCell = step.Cell()
	e.TargetPosition = m.CellCenter(e.TargetCell)
}
