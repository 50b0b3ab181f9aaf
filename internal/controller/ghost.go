package controller

import (
	"pacsim/internal/entity"
	"pacsim/internal/geom"
	"pacsim/internal/maze"
	"pacsim/internal/pathfind"
)

const (
	DefaultPathInterval = 60
	DefaultStepLimit    = 200
)

type GhostMode uint8

const (
	Wander GhostMode = iota
	Chase
)

func (m GhostMode) String() string {
	if m == Chase {
		return "chase"
	}
	return "wander"
}

// Ghost wanders at random until the player comes within sight, then chases
// along a wall-only path refreshed every PathInterval ticks. All per-ghost
// state lives on the entity, so one Ghost value can drive every ghost.
type Ghost struct {
	Difficulty   Difficulty
	PathInterval int
	StepLimit    int
}

func NewGhost(difficulty Difficulty) *Ghost {
	return &Ghost{
		Difficulty:   difficulty,
		PathInterval: DefaultPathInterval,
		StepLimit:    DefaultStepLimit,
	}
}

// Mode reports whether e currently sees the player. Ghosts still in the pen
// never chase.
func (g *Ghost) Mode(e *entity.Entity, w *World) GhostMode {
	if !w.GhostsReleased || w.Player == nil {
		return Wander
	}
	bounds := w.Map.Bounds()
	frac := g.Difficulty.ProximityFraction()
	radius := geom.Vec{X: frac * bounds.Right, Y: frac * bounds.Bottom}
	if geom.EllipseContains(e.Position, radius, w.Player.Position) {
		return Chase
	}
	return Wander
}

func (g *Ghost) Decide(e *entity.Entity, w *World) (entity.Direction, bool) {
	if g.Mode(e, w) == Chase {
		if dir, ok := g.chase(e, w); ok {
			return dir, true
		}
	} else if e.HasPath() {
		e.ClearPath()
	}
	return g.wander(e, w)
}

func (g *Ghost) chase(e *entity.Entity, w *World) (entity.Direction, bool) {
	e.PathAge++
	interval := g.PathInterval
	if interval <= 0 {
		interval = DefaultPathInterval
	}
	if atCellCenter(e, w.Map) && (!e.HasPath() || e.PathAge >= interval) {
		path := pathfind.FindPath(e.Cell, w.Player.Cell, w.Map.Movable(), pathfind.WallsOnly())
		e.SetPath(w.Map, path)
	}
	dir, ok := followPath(e, w)
	if !ok {
		e.ClearPath()
	}
	return dir, ok
}

// wander keeps the current heading until it is blocked or has lasted
// StepLimit advances, then tries the other directions in random order.
func (g *Ghost) wander(e *entity.Entity, w *World) (entity.Direction, bool) {
	limit := g.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	if w.Validator.IsPositionallyValid(e, e.Direction) && e.StraightSteps < limit {
		return e.Direction, false
	}

	candidates := make([]entity.Direction, 0, len(maze.Directions))
	for _, dir := range maze.Directions {
		if dir != e.Direction {
			candidates = append(candidates, dir)
		}
	}
	for _, dir := range shuffled(w.Rand, candidates) {
		if w.Validator.IsValidMove(e, dir) {
			e.StraightSteps = 0
			return dir, true
		}
	}
	e.StraightSteps = 0
	return entity.None, true
}
