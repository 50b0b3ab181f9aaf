package maze

import (
	"errors"
	"testing"

	"pacsim/internal/geom"
)

func mustMap(t *testing.T, text string) *Map {
	t.Helper()
	bp, err := ParseBlueprint(text)
	if err != nil {
		t.Fatalf("parse blueprint: %v", err)
	}
	m, err := Build(bp, 24, 24)
	if err != nil {
		t.Fatalf("build map: %v", err)
	}
	return m
}

func TestParseBlueprintErrors(t *testing.T) {
	if _, err := ParseBlueprint("\n  \n"); !errors.Is(err, ErrEmptyBlueprint) {
		t.Fatalf("expected empty blueprint error, got %v", err)
	}
	if _, err := ParseBlueprint("...\n..\n"); !errors.Is(err, ErrRaggedBlueprint) {
		t.Fatalf("expected ragged blueprint error, got %v", err)
	}
	if _, err := Build(MustParseBlueprint("..."), 0, 24); !errors.Is(err, ErrInvalidCellSize) {
		t.Fatalf("expected invalid cell size error, got %v", err)
	}
}

func TestNamedBlueprints(t *testing.T) {
	names := Names()
	if len(names) < 2 || names[0] != "classic" || names[1] != "corridor" {
		t.Fatalf("unexpected blueprint names: %v", names)
	}
	bp, err := Named("classic")
	if err != nil {
		t.Fatalf("load classic: %v", err)
	}
	if bp.Rows() != 13 || bp.Cols() != 19 {
		t.Fatalf("unexpected classic shape: %dx%d", bp.Rows(), bp.Cols())
	}
	if cell, ok := bp.Find(SymbolPlayer); !ok || cell != (Cell{Row: 7, Col: 9}) {
		t.Fatalf("unexpected player spawn: %+v ok=%t", cell, ok)
	}
	if len(bp.FindAll(SymbolPellet)) != 120 {
		t.Fatalf("unexpected pellet count: %d", len(bp.FindAll(SymbolPellet)))
	}
	if _, err := Named("missing"); !errors.Is(err, ErrUnknownBlueprint) {
		t.Fatalf("expected unknown blueprint error, got %v", err)
	}
}

func TestBuildBoundaries(t *testing.T) {
	m := mustMap(t, "|.J\n*O.")
	bounds := m.Boundaries()
	if len(bounds) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(bounds))
	}
	want := geom.Rect{Left: 0, Top: 0, Right: 24, Bottom: 24}
	if bounds[0].Box != want || bounds[0].Symbol != '|' {
		t.Fatalf("unexpected wall boundary: %+v", bounds[0])
	}
	if jail := m.JailCells(); len(jail) != 1 || jail[0] != (Cell{Row: 0, Col: 2}) {
		t.Fatalf("unexpected jail cells: %v", jail)
	}
	if m.Bounds() != (geom.Rect{Right: 72, Bottom: 48}) {
		t.Fatalf("unexpected bounds: %+v", m.Bounds())
	}
}

func TestPixelCellRoundTrip(t *testing.T) {
	bp, err := Named("classic")
	if err != nil {
		t.Fatalf("load classic: %v", err)
	}
	m, err := Build(bp, 24, 18)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			cell := Cell{Row: r, Col: c}
			if got := m.PixelToCell(m.CellCenter(cell)); got != cell {
				t.Fatalf("round trip mismatch: cell=%+v got=%+v", cell, got)
			}
		}
	}
	if got := m.PixelToCell(geom.Vec{X: -5, Y: 1e6}); got != (Cell{Row: m.Rows() - 1, Col: 0}) {
		t.Fatalf("expected clamped cell, got %+v", got)
	}
	if got := m.CellToPixel(Cell{Row: 1, Col: 1}, geom.Vec{X: 2, Y: -1}); got != (geom.Vec{X: 48, Y: 18}) {
		t.Fatalf("expected clamped offset, got %+v", got)
	}
}

func TestRecomputeMovableGridWithoutPolicy(t *testing.T) {
	m := mustMap(t, "|.G\nJO*")
	grid := m.RecomputeMovableGrid(nil)
	want := MovableGrid{
		{Blocked, Movable, Movable},
		{Blocked, Movable, Movable},
	}
	for r := range want {
		for c := range want[r] {
			if grid[r][c] != want[r][c] {
				t.Fatalf("cell (%d,%d): got %s want %s", r, c, grid[r][c], want[r][c])
			}
		}
	}
}

func TestRecomputeMovableGridProximityFacesPlayer(t *testing.T) {
	m := mustMap(t, "*****\n*****\n*****\n*****\n*****")
	grid := m.RecomputeMovableGrid(&ProximityPolicy{
		Ghosts: []Cell{{Row: 2, Col: 2}},
		Player: Cell{Row: 2, Col: 0},
		Radius: 2,
	})

	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			cell := Cell{Row: r, Col: c}
			want := Movable
			if c <= 2 && cell != (Cell{Row: 2, Col: 0}) {
				want = ProximityRestricted
			}
			if got := grid.At(cell); got != want {
				t.Fatalf("cell %+v: got %s want %s", cell, got, want)
			}
		}
	}
	if m.Movable().At(Cell{Row: 9, Col: 9}) != Blocked {
		t.Fatal("out of range cells must read as blocked")
	}
}

func TestRecomputeKeepsWallsBlocked(t *testing.T) {
	m := mustMap(t, "*|*\n*G*\n*O*")
	grid := m.RecomputeMovableGrid(&ProximityPolicy{
		Ghosts: []Cell{{Row: 1, Col: 1}},
		Player: Cell{Row: 2, Col: 1},
		Radius: 1,
	})
	if grid.At(Cell{Row: 0, Col: 0}) != Movable {
		t.Fatalf("cell behind ghost must stay movable, got %s", grid.At(Cell{Row: 0, Col: 0}))
	}
	if grid.At(Cell{Row: 2, Col: 1}) != Movable {
		t.Fatal("player cell must never be restricted")
	}
	if grid.At(Cell{Row: 2, Col: 0}) != ProximityRestricted {
		t.Fatalf("expected restricted cell beside player, got %s", grid.At(Cell{Row: 2, Col: 0}))
	}
	m2 := mustMap(t, "*|*\n*G*\n*O*")
	grid2 := m2.RecomputeMovableGrid(&ProximityPolicy{
		Ghosts: []Cell{{Row: 1, Col: 1}},
		Player: Cell{Row: 0, Col: 0},
		Radius: 1,
	})
	if grid2.At(Cell{Row: 0, Col: 1}) != Blocked {
		t.Fatalf("wall must stay blocked, got %s", grid2.At(Cell{Row: 0, Col: 1}))
	}
}

func TestToggleBarrier(t *testing.T) {
	m := mustMap(t, "*J*\n*G*")
	jail := Cell{Row: 0, Col: 1}

	m.ToggleBarrier(true, false)
	if m.Symbol(jail) != SymbolJailOpen || m.Movable().At(jail) != Blocked {
		t.Fatalf("temporary open: symbol=%q state=%s", m.Symbol(jail), m.Movable().At(jail))
	}
	if b := m.Boundaries(); len(b) != 1 || !b[0].Hidden {
		t.Fatalf("expected one hidden boundary, got %+v", b)
	}

	m.ToggleBarrier(false, false)
	if m.Symbol(jail) != SymbolJail || m.Boundaries()[0].Hidden {
		t.Fatalf("expected closed jail, got %q", m.Symbol(jail))
	}

	m.ToggleBarrier(true, true)
	if m.Symbol(jail) != SymbolEmpty || m.Movable().At(jail) != Movable || len(m.Boundaries()) != 0 {
		t.Fatalf("permanent open: symbol=%q state=%s boundaries=%d", m.Symbol(jail), m.Movable().At(jail), len(m.Boundaries()))
	}
	if !m.BarrierLocked() {
		t.Fatal("expected barrier lock after permanent toggle")
	}

	m.ToggleBarrier(false, false)
	if m.Symbol(jail) != SymbolEmpty {
		t.Fatal("toggle after permanent open must be ignored")
	}
	if m.RecomputeMovableGrid(nil).At(jail) != Movable {
		t.Fatal("recompute must keep the opened jail movable")
	}
}

func TestBuildDoesNotAliasBlueprint(t *testing.T) {
	bp := MustParseBlueprint("*J*")
	m, err := Build(bp, 10, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	m.ToggleBarrier(true, true)
	if bp[0][1] != SymbolJail {
		t.Fatal("toggle leaked into the caller's blueprint")
	}
}

func TestBarrierTimerBlinksThenOpens(t *testing.T) {
	m := mustMap(t, "*J*")
	jail := Cell{Row: 0, Col: 1}
	var timer BarrierTimer

	timer.Advance(m)
	if timer.Phase() != BarrierClosed || m.Symbol(jail) != SymbolJail {
		t.Fatal("advance before release must not change state")
	}

	timer.Release(2, 3)
	if timer.Phase() != BarrierOpening || timer.Remaining() != 12 {
		t.Fatalf("unexpected release state: phase=%s remaining=%d", timer.Phase(), timer.Remaining())
	}

	var symbols []rune
	for i := 0; i < 12; i++ {
		timer.Advance(m)
		symbols = append(symbols, m.Symbol(jail))
		if timer.GhostsMayLeave() {
			t.Fatalf("ghosts released early at tick %d", i)
		}
	}
	want := "IIJJJIIIJJJ"
	if got := string(symbols[:11]); got != want {
		t.Fatalf("unexpected blink sequence: got=%s want=%s", got, want)
	}

	timer.Advance(m)
	if !timer.GhostsMayLeave() || m.Symbol(jail) != SymbolEmpty {
		t.Fatalf("expected open pen, phase=%s symbol=%q", timer.Phase(), m.Symbol(jail))
	}
}

func TestBarrierTimerImmediate(t *testing.T) {
	m := mustMap(t, "*J*")
	var timer BarrierTimer
	timer.Release(0, 0)
	timer.Advance(m)
	if !timer.GhostsMayLeave() {
		t.Fatalf("expected immediate open, phase=%s", timer.Phase())
	}
}

func TestChebyshevDistance(t *testing.T) {
	if got := ChebyshevDistance(Cell{Row: 1, Col: 1}, Cell{Row: 4, Col: -1}); got != 3 {
		t.Fatalf("unexpected distance: %d", got)
	}
}
