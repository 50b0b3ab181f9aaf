package game

import (
	"pacsim/internal/entity"
	"pacsim/internal/geom"
	"pacsim/internal/maze"
)

// EntityView is a frozen copy of one entity for renderers.
type EntityView struct {
	Kind       string    `json:"kind"`
	Index      int       `json:"index"`
	Position   geom.Vec  `json:"position"`
	HalfExtent geom.Vec  `json:"half_extent"`
	Cell       maze.Cell `json:"cell"`
	Direction  string    `json:"direction"`
}

// View is an immutable snapshot of an episode. Nothing in it aliases live
// episode state.
type View struct {
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
	CellWidth  float64         `json:"cell_width"`
	CellHeight float64         `json:"cell_height"`
	Cells      []string        `json:"cells"`
	Boundaries []maze.Boundary `json:"boundaries"`
	Pellets    []Pellet        `json:"pellets"`
	Player     EntityView      `json:"player"`
	Ghosts     []EntityView    `json:"ghosts"`
	Score      int             `json:"score"`
	Lives      int             `json:"lives"`
	Tick       int             `json:"tick"`
	Fitness    float64         `json:"fitness"`
	Status     Status          `json:"status"`
	Barrier    string          `json:"barrier"`
}

func viewOf(e *entity.Entity) EntityView {
	return EntityView{
		Kind:       e.Kind.String(),
		Index:      e.Index,
		Position:   e.Position,
		HalfExtent: e.HalfExtent,
		Cell:       e.Cell,
		Direction:  e.Direction.String(),
	}
}

func (e *Episode) Snapshot() View {
	bp := e.m.Blueprint()
	cells := make([]string, len(bp))
	for i, row := range bp {
		cells[i] = string(row)
	}
	ghosts := make([]EntityView, len(e.ghosts))
	for i, g := range e.ghosts {
		ghosts[i] = viewOf(g)
	}
	return View{
		Rows:       e.m.Rows(),
		Cols:       e.m.Cols(),
		CellWidth:  e.m.CellWidth(),
		CellHeight: e.m.CellHeight(),
		Cells:      cells,
		Boundaries: append([]maze.Boundary(nil), e.m.Boundaries()...),
		Pellets:    append([]Pellet(nil), e.pellets...),
		Player:     viewOf(e.player),
		Ghosts:     ghosts,
		Score:      e.score,
		Lives:      e.lives,
		Tick:       e.tick,
		Fitness:    e.fitness.Fitness,
		Status:     e.status,
		Barrier:    e.barrier.Phase().String(),
	}
}

// Result summarizes a finished or interrupted episode.
type Result struct {
	Fitness      float64 `json:"fitness"`
	PelletsEaten int     `json:"pellets_eaten"`
	Score        int     `json:"score"`
	Ticks        int     `json:"ticks"`
	Status       Status  `json:"status"`
}

func (e *Episode) Result() Result {
	return Result{
		Fitness:      e.fitness.Fitness,
		PelletsEaten: e.fitness.PelletsEaten,
		Score:        e.score,
		Ticks:        e.tick,
		Status:       e.status,
	}
}
