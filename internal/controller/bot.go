package controller

import (
	"math"

	"pacsim/internal/entity"
	"pacsim/internal/maze"
	"pacsim/internal/pathfind"
)

const DefaultAvoidRadius = 2

type BotMode uint8

const (
	// Plan walks A* paths to the nearest pellet while avoiding ghosts.
	Plan BotMode = iota
	// Decision follows an intent set from outside, typically a network.
	Decision
)

func (m BotMode) String() string {
	if m == Decision {
		return "decision"
	}
	return "plan"
}

type Bot struct {
	Mode BotMode
	// AvoidRadius is the Chebyshev distance kept from every ghost.
	AvoidRadius int

	intent entity.Direction
}

func NewBot(mode BotMode) *Bot {
	return &Bot{Mode: mode, AvoidRadius: DefaultAvoidRadius}
}

// SetIntent records the direction to try on the next Decide. None keeps the
// previous intent.
func (b *Bot) SetIntent(dir entity.Direction) {
	if dir.IsMove() {
		b.intent = dir
	}
}

func (b *Bot) Intent() entity.Direction { return b.intent }

func (b *Bot) Decide(e *entity.Entity, w *World) (entity.Direction, bool) {
	if b.Mode == Decision {
		return b.decideIntent(e, w)
	}
	return b.decidePlan(e, w)
}

func (b *Bot) decideIntent(e *entity.Entity, w *World) (entity.Direction, bool) {
	if b.intent == entity.None {
		return entity.None, false
	}
	if w.Validator.IsValidMove(e, b.intent) {
		return b.intent, true
	}
	b.intent = entity.None
	return entity.None, false
}

func (b *Bot) decidePlan(e *entity.Entity, w *World) (entity.Direction, bool) {
	grid := w.Map.RecomputeMovableGrid(&maze.ProximityPolicy{
		Ghosts: w.GhostCells(),
		Player: e.Cell,
		Radius: b.AvoidRadius,
	})

	if !atCellCenter(e, w.Map) {
		if w.Validator.IsPositionallyValid(e, e.Direction) {
			return e.Direction, false
		}
		e.ClearPath()
		return entity.None, true
	}

	if e.ReachedTarget() {
		e.AdvanceCursor(w.Map)
	}
	if !b.stepUsable(e, w, grid) {
		e.SetPath(w.Map, b.plan(e, w, grid))
	}
	if b.stepUsable(e, w, grid) {
		step, _ := e.CurrentStep()
		return step.Direction, true
	}

	e.ClearPath()
	return b.fallback(e, w), true
}

func (b *Bot) stepUsable(e *entity.Entity, w *World, grid maze.MovableGrid) bool {
	step, ok := e.CurrentStep()
	if !ok {
		return false
	}
	if e.Cell.Neighbor(step.Direction) != step.Cell() {
		return false
	}
	return grid.At(step.Cell()) == maze.Movable && w.Validator.IsValidMove(e, step.Direction)
}

func (b *Bot) plan(e *entity.Entity, w *World, grid maze.MovableGrid) []pathfind.Step {
	target, ok := nearestCell(e.Cell, w.Pellets)
	if !ok {
		return nil
	}
	return pathfind.FindPath(e.Cell, target, grid, pathfind.AvoidGhosts())
}

// fallback prefers a move that leaves every ghost's exclusion zone, then
// any move that does not bring the nearest ghost closer, then holding still.
func (b *Bot) fallback(e *entity.Entity, w *World) entity.Direction {
	moves := w.Validator.ValidMoves(e)
	ghosts := w.GhostCells()

	var safe []entity.Direction
	for _, dir := range moves {
		if b.safeCell(e.Cell.Neighbor(dir), ghosts) {
			safe = append(safe, dir)
		}
	}
	if len(safe) > 0 {
		return safe[w.Rand.Intn(len(safe))]
	}

	current := nearestDistance(e.Cell, ghosts)
	var retreat []entity.Direction
	for _, dir := range moves {
		if nearestDistance(e.Cell.Neighbor(dir), ghosts) >= current {
			retreat = append(retreat, dir)
		}
	}
	if len(retreat) > 0 {
		return retreat[w.Rand.Intn(len(retreat))]
	}
	return entity.None
}

func (b *Bot) safeCell(c maze.Cell, ghosts []maze.Cell) bool {
	for _, g := range ghosts {
		if maze.ChebyshevDistance(c, g) <= b.AvoidRadius {
			return false
		}
	}
	return true
}

func nearestDistance(c maze.Cell, cells []maze.Cell) int {
	best := math.MaxInt
	for _, other := range cells {
		best = min(best, pathfind.ManhattanDistance(c, other))
	}
	return best
}

// nearestCell breaks ties by list order.
func nearestCell(c maze.Cell, cells []maze.Cell) (maze.Cell, bool) {
	best, found := maze.Cell{}, false
	bestDist := math.MaxInt
	for _, other := range cells {
		if d := pathfind.ManhattanDistance(c, other); d < bestDist {
			best, bestDist, found = other, d, true
		}
	}
	return best, found
}
