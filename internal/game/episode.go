// Package game runs one episode of the maze chase: it owns the map, the
// entities and the pellets, advances them tick by tick, applies the
// collision rules and keeps the fitness record used for training.
package game

import (
	"context"
	"math/rand"

	"pacsim/internal/controller"
	"pacsim/internal/entity"
	"pacsim/internal/geom"
	"pacsim/internal/maze"
	"pacsim/internal/movement"
)

type Status uint8

const (
	Running Status = iota
	OnHold
	Won
	Lost
	Stalled
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case OnHold:
		return "on_hold"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further tick changes the episode.
func (s Status) Terminal() bool {
	return s == Won || s == Lost || s == Stalled
}

type Pellet struct {
	Cell     maze.Cell `json:"cell"`
	Position geom.Vec  `json:"position"`
	Radius   geom.Vec  `json:"radius"`
}

type Episode struct {
	cfg       Config
	rng       *rand.Rand
	m         *maze.Map
	validator movement.Validator

	player        *entity.Entity
	ghosts        []*entity.Entity
	ghostStrategy []controller.Strategy
	pellets       []Pellet
	barrier       maze.BarrierTimer
	status        Status
	tick          int
	score         int
	lives         int
	holdTicks     int
	fitness       FitnessRecord
}

// NewEpisode builds a fresh map and spawns every entity from cfg.Blueprint.
// The episode owns rng for its lifetime.
func NewEpisode(cfg Config, rng *rand.Rand) (*Episode, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	m, err := maze.Build(cfg.Blueprint, cfg.CellWidth, cfg.CellHeight)
	if err != nil {
		return nil, err
	}

	origin, ok := cfg.Blueprint.Find(maze.SymbolPlayer)
	if !ok {
		return nil, ErrNoPlayerSpawn
	}
	ghostOrigins := cfg.Blueprint.FindAll(maze.SymbolGhost)
	if cfg.GhostCount > 0 && len(ghostOrigins) == 0 {
		return nil, ErrNoGhostSpawn
	}

	e := &Episode{
		cfg:       cfg,
		rng:       rng,
		m:         m,
		validator: movement.New(m),
		lives:     cfg.Lives,
		fitness:   newFitnessRecord(cfg.Shaping),
	}
	e.player = entity.NewPlayer(m, origin, speed(m, cfg.PlayerTicksPerCell))

	var shared controller.Strategy
	for i := 0; i < cfg.GhostCount; i++ {
		ghost := entity.NewGhost(m, i, ghostOrigins[i%len(ghostOrigins)], speed(m, cfg.GhostTicksPerCell))
		e.ghosts = append(e.ghosts, ghost)
		var strategy controller.Strategy
		switch {
		case cfg.GhostStrategy != nil:
			strategy = cfg.GhostStrategy(i)
		case shared == nil:
			shared = controller.NewGhost(cfg.Difficulty)
			strategy = shared
		default:
			strategy = shared
		}
		e.ghostStrategy = append(e.ghostStrategy, strategy)
	}

	radius := geom.Vec{X: m.CellWidth() * PelletRadius, Y: m.CellHeight() * PelletRadius}
	for _, cell := range cfg.Blueprint.FindAll(maze.SymbolPellet) {
		e.pellets = append(e.pellets, Pellet{Cell: cell, Position: m.CellCenter(cell), Radius: radius})
	}

	switch cfg.Release {
	case ReleaseImmediate:
		e.barrier.OpenNow(m)
	default:
		e.barrier.Release(cfg.ReleaseBlinks, cfg.ReleasePhaseTicks)
	}
	return e, nil
}

func speed(m *maze.Map, ticksPerCell int) geom.Vec {
	return geom.Vec{
		X: m.CellWidth() / float64(ticksPerCell),
		Y: m.CellHeight() / float64(ticksPerCell),
	}
}

func (e *Episode) Map() *maze.Map             { return e.m }
func (e *Episode) Player() *entity.Entity     { return e.player }
func (e *Episode) Ghosts() []*entity.Entity   { return e.ghosts }
func (e *Episode) Pellets() []Pellet          { return e.pellets }
func (e *Episode) Status() Status             { return e.status }
func (e *Episode) Ticks() int                 { return e.tick }
func (e *Episode) Score() int                 { return e.score }
func (e *Episode) Lives() int                 { return e.lives }
func (e *Episode) Fitness() FitnessRecord     { return e.fitness }
func (e *Episode) Barrier() maze.BarrierPhase { return e.barrier.Phase() }
func (e *Episode) Config() Config             { return e.cfg }

func (e *Episode) world() *controller.World {
	cells := make([]maze.Cell, len(e.pellets))
	for i, p := range e.pellets {
		cells[i] = p.Cell
	}
	return &controller.World{
		Map:            e.m,
		Validator:      e.validator,
		Player:         e.player,
		Ghosts:         e.ghosts,
		Pellets:        cells,
		Rand:           e.rng,
		Tick:           e.tick,
		GhostsReleased: e.barrier.GhostsMayLeave(),
	}
}

// Tick advances the episode once and returns the resulting status.
// Terminal episodes are left untouched.
func (e *Episode) Tick() Status {
	if e.status.Terminal() {
		return e.status
	}
	e.tick++

	if e.status == OnHold {
		e.holdTicks--
		if e.holdTicks <= 0 {
			e.resolveDeath()
		}
		return e.status
	}

	e.barrier.Advance(e.m)
	w := e.world()

	for i, ghost := range e.ghosts {
		if dir, ok := e.ghostStrategy[i].Decide(ghost, w); ok {
			ghost.Direction = dir
		}
		e.validator.Advance(ghost, ghost.Direction)
	}

	if dir, ok := e.cfg.Player.Decide(e.player, w); ok {
		e.player.Direction = dir
	}
	moved := e.validator.Advance(e.player, e.player.Direction)

	e.fitness.shape(e.player, e.pellets, moved)
	if e.cfg.StopDegenerate && e.fitness.Streak > e.cfg.Shaping.StreakLimit {
		e.status = Lost
		return e.status
	}

	if e.eatPellets() {
		return e.status
	}
	if e.ghostHit() {
		e.fitness.Fitness -= e.cfg.Shaping.GhostPenalty
		e.lives--
		if e.cfg.DeathTicks > 0 {
			e.status = OnHold
			e.holdTicks = e.cfg.DeathTicks
			e.player.Direction = entity.Dying
		} else {
			e.resolveDeath()
		}
		return e.status
	}

	e.checkLimits()
	return e.status
}

// Run steps until the episode ends or ctx is done.
func (e *Episode) Run(ctx context.Context) (Status, error) {
	for !e.status.Terminal() {
		if err := ctx.Err(); err != nil {
			return e.status, err
		}
		e.Tick()
	}
	return e.status, nil
}

func (e *Episode) eatPellets() bool {
	kept := e.pellets[:0]
	for _, p := range e.pellets {
		if pelletHit(e.player, p) {
			e.score++
			e.fitness.PelletsEaten++
			e.fitness.Fitness += e.cfg.Shaping.PelletReward
			continue
		}
		kept = append(kept, p)
	}
	e.pellets = kept
	if len(e.pellets) == 0 {
		e.fitness.Fitness += e.cfg.Shaping.WinReward
		e.status = Won
		return true
	}
	return false
}

// pelletHit is an inclusive box test on the combined radii.
func pelletHit(player *entity.Entity, p Pellet) bool {
	dx := geom.Abs(player.Position.X - p.Position.X)
	dy := geom.Abs(player.Position.Y - p.Position.Y)
	return dx <= player.HalfExtent.X+p.Radius.X && dy <= player.HalfExtent.Y+p.Radius.Y
}

func (e *Episode) ghostHit() bool {
	for _, ghost := range e.ghosts {
		if GhostTouchesPlayer(ghost, e.player) {
			return true
		}
	}
	return false
}

// GhostTouchesPlayer tests the midpoints of the ghost's four sides against
// the player's ellipse. Points exactly on the ellipse do not count.
func GhostTouchesPlayer(ghost, player *entity.Entity) bool {
	for _, p := range ghost.Box().SideMidpoints() {
		if geom.EllipseContainsStrict(player.Position, player.HalfExtent, p) {
			return true
		}
	}
	return false
}

func (e *Episode) resolveDeath() {
	if e.lives <= 0 {
		e.status = Lost
		return
	}
	e.player.Respawn(e.m)
	for _, ghost := range e.ghosts {
		ghost.Respawn(e.m)
	}
	e.status = Running
}

func (e *Episode) checkLimits() {
	s := e.cfg.Shaping
	if e.cfg.StopDegenerate {
		if e.fitness.Stillness > s.StillHardLimit || e.fitness.PelletsEaten > s.PelletCap {
			e.status = Stalled
			return
		}
	}
	if e.cfg.MaxTicks > 0 && e.tick >= e.cfg.MaxTicks {
		e.status = Stalled
	}
}
