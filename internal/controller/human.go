package controller

import "pacsim/internal/entity"

// KeyDirection maps a key name onto a move. Both wasd and arrow names are
// accepted.
func KeyDirection(key string) (entity.Direction, bool) {
	switch key {
	case "w", "up", "ArrowUp":
		return entity.Up, true
	case "s", "down", "ArrowDown":
		return entity.Down, true
	case "a", "left", "ArrowLeft":
		return entity.Left, true
	case "d", "right", "ArrowRight":
		return entity.Right, true
	}
	return entity.None, false
}

type inputKind uint8

const (
	inputNone inputKind = iota
	inputKey
	inputSwipe
)

type KeyState struct {
	Held map[string]bool
	Last string
}

type SwipeState struct {
	Active map[entity.Direction]bool
	Last   entity.Direction
}

// Human turns held keys or swipes into direction changes. Input handlers
// only call PressKey, ReleaseKey and Swipe; Decide runs on the tick.
type Human struct {
	Keys   KeyState
	Swipes SwipeState
	last   inputKind
}

func NewHuman() *Human {
	return &Human{
		Keys:   KeyState{Held: map[string]bool{}},
		Swipes: SwipeState{Active: map[entity.Direction]bool{}},
	}
}

// PressKey records a held key. Keys that map to no direction are ignored.
func (h *Human) PressKey(key string) bool {
	if _, ok := KeyDirection(key); !ok {
		return false
	}
	h.Keys.Held[key] = true
	h.Keys.Last = key
	h.last = inputKey
	return true
}

func (h *Human) ReleaseKey(key string) {
	h.Keys.Held[key] = false
}

// Swipe records a swipe gesture toward dir.
func (h *Human) Swipe(dir entity.Direction) {
	if !dir.IsMove() {
		return
	}
	h.resetSwipes()
	h.Swipes.Active[dir] = true
	h.Swipes.Last = dir
	h.last = inputSwipe
}

func (h *Human) resetSwipes() {
	for dir := range h.Swipes.Active {
		h.Swipes.Active[dir] = false
	}
}

// Decide adopts the last input only when it is still active and the move is
// valid. An invalid key press keeps waiting; an invalid swipe is dropped.
func (h *Human) Decide(e *entity.Entity, w *World) (entity.Direction, bool) {
	switch h.last {
	case inputKey:
		dir, ok := KeyDirection(h.Keys.Last)
		if ok && h.Keys.Held[h.Keys.Last] && w.Validator.IsValidMove(e, dir) {
			return dir, true
		}
	case inputSwipe:
		dir := h.Swipes.Last
		if h.Swipes.Active[dir] && w.Validator.IsValidMove(e, dir) {
			return dir, true
		}
		h.resetSwipes()
	}
	return entity.None, false
}
