// Package controller holds the behaviors that steer entities: keyboard or
// swipe input, the scripted ghosts and the autonomous bot.
package controller

import (
	"fmt"
	"math/rand"

	"pacsim/internal/entity"
	"pacsim/internal/maze"
	"pacsim/internal/movement"
)

// World is the read-mostly view a strategy decides against. The episode
// rebuilds it every tick.
type World struct {
	Map       *maze.Map
	Validator movement.Validator
	Player    *entity.Entity
	Ghosts    []*entity.Entity
	Pellets   []maze.Cell
	Rand      *rand.Rand
	Tick      int
	// GhostsReleased is true once the pen is permanently open.
	GhostsReleased bool
}

// GhostCells lists the current cell of every ghost.
func (w *World) GhostCells() []maze.Cell {
	cells := make([]maze.Cell, len(w.Ghosts))
	for i, g := range w.Ghosts {
		cells[i] = g.Cell
	}
	return cells
}

// Strategy picks a direction for e. A false second result leaves the
// entity's direction unchanged; the caller then advances the entity along
// whatever direction it holds.
type Strategy interface {
	Decide(e *entity.Entity, w *World) (entity.Direction, bool)
}

// Idle never changes direction.
type Idle struct{}

func (Idle) Decide(*entity.Entity, *World) (entity.Direction, bool) {
	return entity.None, false
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unsupported difficulty: %s", s)
}

// ProximityFraction is the ghost sight radius relative to the canvas size.
func (d Difficulty) ProximityFraction() float64 {
	switch d {
	case Easy:
		return 0.2
	case Hard:
		return 0.75
	default:
		return 0.4
	}
}

// atCellCenter uses the same tolerance as path step arrival.
func atCellCenter(e *entity.Entity, m *maze.Map) bool {
	return e.Position.Dist(m.CellCenter(e.Cell)) < e.HalfExtent.X/6
}

// followPath steers along the planned path. It reports false when the plan
// can no longer be followed.
func followPath(e *entity.Entity, w *World) (entity.Direction, bool) {
	if e.ReachedTarget() {
		e.AdvanceCursor(w.Map)
	}
	step, ok := e.CurrentStep()
	if !ok {
		return entity.None, false
	}
	if w.Validator.IsValidMove(e, step.Direction) {
		return step.Direction, true
	}
	if e.Direction == step.Direction && !atCellCenter(e, w.Map) && w.Validator.IsPositionallyValid(e, e.Direction) {
		return e.Direction, true
	}
	return entity.None, false
}

func shuffled(rng *rand.Rand, dirs []entity.Direction) []entity.Direction {
	out := append([]entity.Direction(nil), dirs...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
