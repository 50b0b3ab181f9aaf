package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"pacsim/internal/controller"
	"pacsim/internal/entity"
	"pacsim/internal/geom"
	"pacsim/internal/maze"
)

const corridor = "bbbbb\nbbbbb\nO***.\nbbbbb\nbbbbb"

func idleGhosts(int) controller.Strategy { return controller.Idle{} }

func newEpisode(t *testing.T, cfg Config) *Episode {
	t.Helper()
	ep, err := NewEpisode(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new episode: %v", err)
	}
	return ep
}

func TestNewEpisodeValidation(t *testing.T) {
	cfg := DefaultConfig(maze.MustParseBlueprint("..."), controller.Idle{})
	if _, err := NewEpisode(cfg, nil); !errors.Is(err, ErrNoPlayerSpawn) {
		t.Fatalf("expected missing player error, got %v", err)
	}
	cfg = DefaultConfig(maze.MustParseBlueprint("O.."), controller.Idle{})
	if _, err := NewEpisode(cfg, nil); !errors.Is(err, ErrNoGhostSpawn) {
		t.Fatalf("expected missing ghost error, got %v", err)
	}
	cfg = DefaultConfig(maze.MustParseBlueprint("O.G"), nil)
	if _, err := NewEpisode(cfg, nil); !errors.Is(err, ErrNoStrategy) {
		t.Fatalf("expected missing strategy error, got %v", err)
	}
	cfg = DefaultConfig(maze.MustParseBlueprint("O.G"), controller.Idle{})
	cfg.Difficulty = "nightmare"
	if _, err := NewEpisode(cfg, nil); err == nil {
		t.Fatal("expected difficulty error")
	}
}

func TestCorridorBotWinsWithinBudget(t *testing.T) {
	cfg := TrainingConfig(maze.MustParseBlueprint(corridor), controller.NewBot(controller.Plan))
	cfg.GhostCount = 0
	ep := newEpisode(t, cfg)

	budget := 4 * cfg.PlayerTicksPerCell
	for i := 0; i < budget && !ep.Status().Terminal(); i++ {
		ep.Tick()
	}
	if ep.Status() != Won {
		t.Fatalf("expected win within %d ticks, status=%s ticks=%d", budget, ep.Status(), ep.Ticks())
	}
	if ep.Score() != 1 || ep.Fitness().PelletsEaten != 1 {
		t.Fatalf("unexpected score=%d eaten=%d", ep.Score(), ep.Fitness().PelletsEaten)
	}
	if ep.Fitness().Fitness < cfg.Shaping.WinReward {
		t.Fatalf("expected win reward in fitness, got %f", ep.Fitness().Fitness)
	}
}

func TestBotHoldsBesideStationedGhost(t *testing.T) {
	cfg := DefaultConfig(maze.MustParseBlueprint("bbbbb\nbbbbb\nO*G*.\nbbbbb\nbbbbb"), controller.NewBot(controller.Plan))
	cfg.GhostCount = 1
	cfg.GhostStrategy = idleGhosts
	ep := newEpisode(t, cfg)

	for i := 0; i < 300; i++ {
		ep.Tick()
	}
	if ep.Status() != Running || ep.Lives() != cfg.Lives {
		t.Fatalf("bot must never collide: status=%s lives=%d", ep.Status(), ep.Lives())
	}
	if ep.Player().Cell != (maze.Cell{Row: 2, Col: 0}) {
		t.Fatalf("expected bot to hold at origin, got %+v", ep.Player().Cell)
	}
}

func TestNoOpControllerEndsRepetitive(t *testing.T) {
	cfg := TrainingConfig(maze.MustParseBlueprint(corridor), controller.NewBot(controller.Decision))
	cfg.GhostCount = 0
	ep := newEpisode(t, cfg)

	status, err := ep.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if status != Lost {
		t.Fatalf("expected lost, got %s", status)
	}
	want := cfg.Shaping.WindowSize + cfg.Shaping.StreakLimit
	if ep.Ticks() != want {
		t.Fatalf("expected stop at tick %d, got %d", want, ep.Ticks())
	}
	if ep.Fitness().Fitness >= 0 {
		t.Fatalf("expected negative fitness, got %f", ep.Fitness().Fitness)
	}
}

func TestRunHonorsContext(t *testing.T) {
	cfg := DefaultConfig(maze.MustParseBlueprint(corridor), controller.Idle{})
	cfg.GhostCount = 0
	ep := newEpisode(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ep.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestGhostHitHoldsThenRespawns(t *testing.T) {
	bot := controller.NewBot(controller.Decision)
	bot.SetIntent(entity.Right)
	cfg := DefaultConfig(maze.MustParseBlueprint("OG."), bot)
	cfg.GhostCount = 1
	cfg.GhostStrategy = idleGhosts
	cfg.DeathTicks = 2
	ep := newEpisode(t, cfg)

	for i := 0; i < 3; i++ {
		ep.Tick()
	}
	if ep.Status() != OnHold || ep.Lives() != cfg.Lives-1 {
		t.Fatalf("expected hold after contact, status=%s lives=%d", ep.Status(), ep.Lives())
	}
	if ep.Player().Direction != entity.Dying {
		t.Fatalf("expected dying player, got %s", ep.Player().Direction)
	}

	ep.Tick()
	ep.Tick()
	if ep.Status() != Running {
		t.Fatalf("expected running after hold, got %s", ep.Status())
	}
	if ep.Player().Position != ep.Map().CellCenter(maze.Cell{}) {
		t.Fatalf("expected respawn at origin, got %+v", ep.Player().Position)
	}
}

func TestGhostHitOnLastLifeLoses(t *testing.T) {
	bot := controller.NewBot(controller.Decision)
	bot.SetIntent(entity.Right)
	cfg := TrainingConfig(maze.MustParseBlueprint("OG."), bot)
	cfg.GhostCount = 1
	cfg.GhostStrategy = idleGhosts
	ep := newEpisode(t, cfg)

	status, err := ep.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if status != Lost || ep.Ticks() != 3 {
		t.Fatalf("expected loss on tick 3, status=%s ticks=%d", status, ep.Ticks())
	}
}

func TestPelletHitIsInclusive(t *testing.T) {
	player := &entity.Entity{Position: geom.Vec{X: 0, Y: 0}, HalfExtent: geom.Vec{X: 4, Y: 4}}
	pellet := Pellet{Position: geom.Vec{X: 5, Y: 5}, Radius: geom.Vec{X: 1, Y: 1}}
	if !pelletHit(player, pellet) {
		t.Fatal("touching pellet must be eaten")
	}
	pellet.Position.X = 5.001
	if pelletHit(player, pellet) {
		t.Fatal("pellet beyond reach must not be eaten")
	}
}

func TestGhostContactIsStrict(t *testing.T) {
	player := &entity.Entity{Position: geom.Vec{}, HalfExtent: geom.Vec{X: 10, Y: 10}}
	ghost := &entity.Entity{Position: geom.Vec{X: 15}, HalfExtent: geom.Vec{X: 5, Y: 5}}
	if GhostTouchesPlayer(ghost, player) {
		t.Fatal("midpoint exactly on the ellipse must not collide")
	}
	ghost.Position.X = 14
	if !GhostTouchesPlayer(ghost, player) {
		t.Fatal("midpoint inside the ellipse must collide")
	}
	ghost.Position = geom.Vec{X: 12, Y: 12}
	if GhostTouchesPlayer(ghost, player) {
		t.Fatal("diagonal overlap without a midpoint inside must not collide")
	}
}

func TestInputs(t *testing.T) {
	cfg := DefaultConfig(maze.MustParseBlueprint(corridor), controller.Idle{})
	cfg.GhostCount = 0
	ep := newEpisode(t, cfg)

	want := []float64{0.1, 0.5, -1, -1, -1, 4, -1, -1, -1, -1, 0.5, 0.5, 0, 1}
	got := ep.Inputs()
	if len(got) != InputCount {
		t.Fatalf("expected %d inputs, got %d", InputCount, len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("input %d: got %v want %v (all=%v)", i, got[i], want[i], got)
		}
	}
}

func TestLineDistances(t *testing.T) {
	got := lineDistances(maze.Cell{Row: 3, Col: 3}, []maze.Cell{
		{Row: 0, Col: 3}, {Row: 1, Col: 3}, {Row: 5, Col: 3}, {Row: 3, Col: 0}, {Row: 4, Col: 4},
	})
	want := [4]float64{2, 2, 3, -1}
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAnimatedReleaseOpensPen(t *testing.T) {
	bp, err := maze.Named("classic")
	if err != nil {
		t.Fatalf("load classic: %v", err)
	}
	cfg := DefaultConfig(bp, controller.Idle{})
	cfg.GhostStrategy = idleGhosts
	ep := newEpisode(t, cfg)
	jail := ep.Map().JailCells()[0]

	ep.Tick()
	if ep.Barrier() != maze.BarrierOpening {
		t.Fatalf("expected opening barrier, got %s", ep.Barrier())
	}
	total := cfg.ReleaseBlinks * 2 * cfg.ReleasePhaseTicks
	for i := 1; i <= total; i++ {
		ep.Tick()
	}
	if ep.Barrier() != maze.BarrierOpen || ep.Map().Symbol(jail) != maze.SymbolEmpty {
		t.Fatalf("expected open pen, barrier=%s symbol=%q", ep.Barrier(), ep.Map().Symbol(jail))
	}
	if len(ep.Ghosts()) != DefaultGhostCount {
		t.Fatalf("expected %d ghosts, got %d", DefaultGhostCount, len(ep.Ghosts()))
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	cfg := TrainingConfig(maze.MustParseBlueprint(corridor), controller.NewBot(controller.Plan))
	cfg.GhostCount = 0
	ep := newEpisode(t, cfg)
	view := ep.Snapshot()
	if _, err := ep.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(view.Pellets) != 1 || view.Status != Running || view.Player.Cell != (maze.Cell{Row: 2, Col: 0}) {
		t.Fatalf("snapshot changed after run: %+v", view)
	}
	if ep.Snapshot().Status != Won {
		t.Fatalf("expected won snapshot, got %s", ep.Snapshot().Status)
	}
}

func TestShapingRewardsProgressAndPenalizesStillness(t *testing.T) {
	rec := newFitnessRecord(DefaultShaping())
	player := &entity.Entity{Cell: maze.Cell{Row: 0, Col: 0}}
	pellets := []Pellet{{Cell: maze.Cell{Row: 0, Col: 4}}}

	rec.shape(player, pellets, true)
	if rec.Fitness != 2 {
		t.Fatalf("first tick: expected alive+move=2, got %f", rec.Fitness)
	}
	player.Cell.Col = 1
	rec.shape(player, pellets, true)
	if rec.Fitness != 2+10+2 {
		t.Fatalf("closer tick: got %f", rec.Fitness)
	}
	rec.shape(player, pellets, false)
	if rec.Stillness != 1 || rec.Fitness != 14+1-2 {
		t.Fatalf("still tick: stillness=%d fitness=%f", rec.Stillness, rec.Fitness)
	}
}
