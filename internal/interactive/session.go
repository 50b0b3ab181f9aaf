// Package interactive plays an episode in a terminal. One goroutine reads
// terminal events into a channel; the loop goroutine owns the episode and
// the human controller and applies input between ticks.
package interactive

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"pacsim/internal/controller"
	"pacsim/internal/game"
	"pacsim/internal/render"
)

// DefaultTickInterval runs the episode at 60 ticks per second.
const DefaultTickInterval = time.Second / 60

type Config struct {
	TickInterval time.Duration
	// Human receives key presses. Nil watches the episode; only the quit
	// and pause keys are handled.
	Human *controller.Human
}

type Session struct {
	screen   tcell.Screen
	episode  *game.Episode
	human    *controller.Human
	interval time.Duration

	held   string
	paused bool
	quit   bool
}

func New(screen tcell.Screen, episode *game.Episode, cfg Config) (*Session, error) {
	if screen == nil {
		return nil, fmt.Errorf("screen is required")
	}
	if episode == nil {
		return nil, fmt.Errorf("episode is required")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Session{
		screen:   screen,
		episode:  episode,
		human:    cfg.Human,
		interval: cfg.TickInterval,
	}, nil
}

// Run plays until the episode ends, the quit key is pressed or ctx is done.
// The caller owns the screen; finalizing it ends the event reader.
func (s *Session) Run(ctx context.Context) (game.Result, error) {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(s.screen, events, done)
	return s.loop(ctx, events)
}

// Quit reports whether the session ended on the quit key.
func (s *Session) Quit() bool {
	return s.quit
}

func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (s *Session) loop(ctx context.Context, events <-chan tcell.Event) (game.Result, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.draw()
	for {
		select {
		case <-ctx.Done():
			return s.episode.Result(), ctx.Err()
		case ev := <-events:
			if !s.handleEvent(ev) {
				s.quit = true
				return s.episode.Result(), nil
			}
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return s.episode.Result(), err
			}
			if s.paused {
				continue
			}
			status := s.episode.Tick()
			s.draw()
			if status.Terminal() {
				return s.episode.Result(), nil
			}
		}
	}
}

func (s *Session) draw() {
	s.screen.Clear()
	render.DrawView(s.screen, s.episode.Snapshot())
	s.screen.Show()
}

func (s *Session) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return s.handleKey(KeyName(ev))
	case *tcell.EventResize:
		s.screen.Sync()
		s.draw()
	}
	return true
}

// KeyName maps a key event onto the names the session understands.
func KeyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return "quit"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

// handleKey returns false on quit. Terminals report no key release, so a
// new direction key releases the one held before it.
func (s *Session) handleKey(name string) bool {
	switch name {
	case "quit", "q":
		return false
	case "p":
		s.paused = !s.paused
		return true
	}
	if s.human == nil {
		return true
	}
	if _, ok := controller.KeyDirection(name); !ok {
		return true
	}
	if s.held != "" && s.held != name {
		s.human.ReleaseKey(s.held)
	}
	s.human.PressKey(name)
	s.held = name
	return true
}
