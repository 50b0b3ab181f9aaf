package maze

// ToggleBarrier flips every jail cell between closed (J), temporarily open
// (I, still solid but hidden) and permanently open (empty, boundary removed).
// A permanent toggle locks the resulting state.
func (m *Map) ToggleBarrier(open, permanent bool) {
	if m.barrierSet {
		return
	}

	sym := SymbolJail
	switch {
	case open && permanent:
		sym = SymbolEmpty
	case open:
		sym = SymbolJailOpen
	}

	jail := make(map[Cell]struct{}, len(m.jailCells))
	for _, cell := range m.jailCells {
		jail[cell] = struct{}{}
		m.grid[cell.Row][cell.Col] = sym
		if m.movable.InBounds(cell) {
			if IsMovable(sym) {
				m.movable[cell.Row][cell.Col] = Movable
			} else {
				m.movable[cell.Row][cell.Col] = Blocked
			}
		}
	}

	kept := m.boundaries[:0]
	for _, b := range m.boundaries {
		if _, ok := jail[b.Cell]; ok {
			if IsMovable(sym) {
				continue
			}
			b.Symbol = sym
			b.Hidden = sym == SymbolJailOpen
		}
		kept = append(kept, b)
	}
	m.boundaries = kept
	m.barrierSet = permanent
}

// BarrierLocked reports whether a permanent toggle has happened.
func (m *Map) BarrierLocked() bool {
	return m.barrierSet
}

// BarrierPhase is the release state of the ghost pen.
type BarrierPhase uint8

const (
	BarrierClosed BarrierPhase = iota
	BarrierOpening
	BarrierOpen
)

func (p BarrierPhase) String() string {
	switch p {
	case BarrierClosed:
		return "closed"
	case BarrierOpening:
		return "opening"
	case BarrierOpen:
		return "open"
	default:
		return "unknown"
	}
}

// BarrierTimer drives the timed pen release: the bars blink between closed
// and temporarily open every phaseTicks, then open for good.
type BarrierTimer struct {
	phase      BarrierPhase
	remaining  int
	total      int
	phaseTicks int
}

// Release starts the blink sequence. Non-positive arguments make the next
// Advance open the pen immediately.
func (t *BarrierTimer) Release(blinks, phaseTicks int) {
	if t.phase == BarrierOpen {
		return
	}
	t.phase = BarrierOpening
	t.phaseTicks = max(phaseTicks, 1)
	t.total = max(blinks, 0) * 2 * t.phaseTicks
	t.remaining = t.total
}

// OpenNow skips the animation.
func (t *BarrierTimer) OpenNow(m *Map) {
	m.ToggleBarrier(true, true)
	t.phase = BarrierOpen
	t.remaining = 0
}

// Advance moves the timer one tick and applies the matching jail symbols.
func (t *BarrierTimer) Advance(m *Map) {
	if t.phase != BarrierOpening {
		return
	}
	if t.remaining <= 0 {
		t.OpenNow(m)
		return
	}
	t.remaining--
	elapsed := t.total - t.remaining
	open := (elapsed/t.phaseTicks)%2 == 0
	m.ToggleBarrier(open, false)
}

func (t *BarrierTimer) Phase() BarrierPhase { return t.phase }

// Remaining is the tick count left in the Opening phase.
func (t *BarrierTimer) Remaining() int { return t.remaining }

// GhostsMayLeave is true once the pen is permanently open.
func (t *BarrierTimer) GhostsMayLeave() bool {
	return t.phase == BarrierOpen
}
