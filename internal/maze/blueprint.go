package maze

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	SymbolPellet   = '.'
	SymbolEmpty    = '*'
	SymbolPlayer   = 'O'
	SymbolGhost    = 'G'
	SymbolJail     = 'J'
	SymbolJailOpen = 'I'
)

var (
	ErrEmptyBlueprint   = errors.New("blueprint is empty")
	ErrRaggedBlueprint  = errors.New("blueprint rows differ in length")
	ErrUnknownBlueprint = errors.New("unknown blueprint")
)

//go:embed blueprints/*.txt
var embedded embed.FS

// Cell is a grid index.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// IsMovable reports whether entities may occupy a cell holding sym.
func IsMovable(sym rune) bool {
	switch sym {
	case SymbolPellet, SymbolEmpty, SymbolPlayer, SymbolGhost:
		return true
	}
	return false
}

// IsJail reports whether sym is a closed or temporarily open jail bar.
func IsJail(sym rune) bool {
	return sym == SymbolJail || sym == SymbolJailOpen
}

// Blueprint is the symbolic maze description, indexed [row][col].
type Blueprint [][]rune

// ParseBlueprint reads one row per line. Blank lines around the grid are
// ignored; every remaining row must have the same width.
func ParseBlueprint(text string) (Blueprint, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, ErrEmptyBlueprint
	}

	bp := make(Blueprint, 0, len(lines))
	for _, line := range lines {
		bp = append(bp, []rune(strings.TrimRight(line, " \t")))
	}
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return bp, nil
}

// MustParseBlueprint panics on malformed input; intended for fixtures.
func MustParseBlueprint(text string) Blueprint {
	bp, err := ParseBlueprint(text)
	if err != nil {
		panic(err)
	}
	return bp
}

func (b Blueprint) Validate() error {
	if len(b) == 0 || len(b[0]) == 0 {
		return ErrEmptyBlueprint
	}
	width := len(b[0])
	for i, row := range b {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedBlueprint, i, len(row), width)
		}
	}
	return nil
}

func (b Blueprint) Rows() int {
	return len(b)
}

func (b Blueprint) Cols() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Find returns the first cell holding sym in row-major order.
func (b Blueprint) Find(sym rune) (Cell, bool) {
	for r, row := range b {
		for c, s := range row {
			if s == sym {
				return Cell{Row: r, Col: c}, true
			}
		}
	}
	return Cell{}, false
}

func (b Blueprint) FindAll(sym rune) []Cell {
	var cells []Cell
	for r, row := range b {
		for c, s := range row {
			if s == sym {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

func (b Blueprint) Clone() Blueprint {
	out := make(Blueprint, len(b))
	for i, row := range b {
		out[i] = append([]rune(nil), row...)
	}
	return out
}

func (b Blueprint) String() string {
	var sb strings.Builder
	for i, row := range b {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(row))
	}
	return sb.String()
}

// Named loads one of the embedded blueprints.
func Named(name string) (Blueprint, error) {
	data, err := embedded.ReadFile(path.Join("blueprints", name+".txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlueprint, name)
	}
	return ParseBlueprint(string(data))
}

// Names lists the embedded blueprints.
func Names() []string {
	entries, err := embedded.ReadDir("blueprints")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	sort.Strings(names)
	return names
}
