package maze

// Direction is an entity's travel state. Dying is a terminal animation
// marker and never a grid move.
type Direction uint8

const (
	None Direction = iota
	Up
	Down
	Left
	Right
	Dying
)

// Directions lists the four grid moves in neighbor-expansion order.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Dying:
		return "dying"
	default:
		return "unknown"
	}
}

// IsMove reports whether d is one of the four grid moves.
func (d Direction) IsMove() bool {
	return d >= Up && d <= Right
}

// Delta returns the row and column offset of one step toward d.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Vertical reports whether d travels along the row axis.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}

// ParseDirection is the inverse of String for the four moves and none.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range []Direction{None, Up, Down, Left, Right} {
		if d.String() == s {
			return d, true
		}
	}
	return None, false
}

// Neighbor returns the adjacent cell toward d; non-moves return c.
func (c Cell) Neighbor(d Direction) Cell {
	dr, dc := d.Delta()
	return Cell{Row: c.Row + dr, Col: c.Col + dc}
}

// DirectionBetween returns the move taking a to an adjacent b.
func DirectionBetween(a, b Cell) Direction {
	for _, d := range Directions {
		if a.Neighbor(d) == b {
			return d
		}
	}
	return None
}
