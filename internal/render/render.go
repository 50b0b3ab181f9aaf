// Package render draws episode snapshots onto a character grid. It reads
// only game.View, so any goroutine holding a snapshot can draw it.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"pacsim/internal/entity"
	"pacsim/internal/game"
	"pacsim/internal/maze"
)

// CellColumns is the number of terminal columns used per maze cell.
const CellColumns = 2

// Surface is the part of tcell.Screen the renderer writes to.
type Surface interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

var (
	wallStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	jailStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	pelletStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	playerStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	defaultStyle = tcell.StyleDefault

	ghostStyles = []tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorRed),
		tcell.StyleDefault.Foreground(tcell.ColorPink),
		tcell.StyleDefault.Foreground(tcell.ColorAqua),
		tcell.StyleDefault.Foreground(tcell.ColorOrange),
	}
)

// WallGlyph returns the rune drawn for a non-movable blueprint symbol.
func WallGlyph(sym rune) rune {
	switch sym {
	case '-', '_':
		return '─'
	case '|':
		return '│'
	case '1':
		return '┌'
	case '2':
		return '┐'
	case '3':
		return '┘'
	case '4':
		return '└'
	case '7':
		return '┬'
	case '8':
		return '┴'
	case '[':
		return '╶'
	case ']':
		return '╴'
	case '^':
		return '╷'
	case maze.SymbolJail:
		return '═'
	case maze.SymbolJailOpen:
		return ' '
	}
	return '█'
}

// PlayerGlyph draws the player with its mouth facing dir.
func PlayerGlyph(dir entity.Direction) rune {
	switch dir {
	case entity.Up:
		return 'V'
	case entity.Down:
		return '^'
	case entity.Left:
		return '>'
	case entity.Right:
		return '<'
	case entity.Dying:
		return '*'
	}
	return 'O'
}

func put(s Surface, x, y int, r rune, style tcell.Style) {
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	s.SetContent(x, y, r, nil, style)
}

// putCell fills both columns of one maze cell.
func putCell(s Surface, c maze.Cell, r rune, style tcell.Style) {
	x := c.Col * CellColumns
	put(s, x, c.Row, r, style)
	fill := ' '
	if r == '─' || r == '═' {
		fill = r
	}
	for i := 1; i < CellColumns; i++ {
		put(s, x+i, c.Row, fill, style)
	}
}

// DrawMap draws walls and jail bars and blanks every movable cell. Hidden
// boundaries, the opened jail bars, are left blank.
func DrawMap(s Surface, v game.View) {
	hidden := make(map[maze.Cell]bool)
	for _, b := range v.Boundaries {
		if b.Hidden {
			hidden[b.Cell] = true
		}
	}
	for row, line := range v.Cells {
		for col, sym := range []rune(line) {
			c := maze.Cell{Row: row, Col: col}
			switch {
			case maze.IsMovable(sym), hidden[c]:
				putCell(s, c, ' ', defaultStyle)
			case maze.IsJail(sym):
				putCell(s, c, WallGlyph(sym), jailStyle)
			default:
				putCell(s, c, WallGlyph(sym), wallStyle)
			}
		}
	}
}

func DrawPellet(s Surface, p game.Pellet) {
	put(s, p.Cell.Col*CellColumns, p.Cell.Row, '·', pelletStyle)
}

// DrawEntity draws a player or a ghost at its current cell.
func DrawEntity(s Surface, e game.EntityView) {
	x := e.Cell.Col * CellColumns
	if e.Kind == entity.Ghost.String() {
		put(s, x, e.Cell.Row, 'M', ghostStyles[e.Index%len(ghostStyles)])
		return
	}
	dir, ok := maze.ParseDirection(e.Direction)
	if !ok && e.Direction == entity.Dying.String() {
		dir = entity.Dying
	}
	put(s, x, e.Cell.Row, PlayerGlyph(dir), playerStyle)
}

// StatusLine formats the line drawn under the maze.
func StatusLine(v game.View) string {
	return fmt.Sprintf("score %d  lives %d  tick %d  %s", v.Score, v.Lives, v.Tick, v.Status)
}

// DrawView draws a full frame: map, pellets, ghosts, the player on top and
// the status line. The caller shows the screen.
func DrawView(s Surface, v game.View) {
	DrawMap(s, v)
	for _, p := range v.Pellets {
		DrawPellet(s, p)
	}
	for _, g := range v.Ghosts {
		DrawEntity(s, g)
	}
	DrawEntity(s, v.Player)

	w, _ := s.Size()
	line := []rune(StatusLine(v))
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		put(s, x, v.Rows, r, statusStyle)
	}
}
