package scape

import (
	"pacsim/internal/controller"
	"pacsim/internal/entity"
	"pacsim/internal/game"
)

// Pilot is a player strategy steered by a network outside of evaluation,
// for watching a stored genome play. It reads the sensors of the attached
// episode on every decision, after the ghosts of that tick have moved.
type Pilot struct {
	runner PropagateAgent
	bot    *controller.Bot
	ep     *game.Episode
	err    error
}

func NewPilot(runner PropagateAgent) *Pilot {
	return &Pilot{runner: runner, bot: controller.NewBot(controller.Decision)}
}

// Attach sets the episode whose sensors feed the network. The episode is
// built with the pilot as its player, so attaching happens afterwards.
func (p *Pilot) Attach(ep *game.Episode) {
	p.ep = ep
}

// Err returns the first propagation error. After an error the pilot keeps
// its last intent.
func (p *Pilot) Err() error {
	return p.err
}

func (p *Pilot) Decide(e *entity.Entity, w *controller.World) (entity.Direction, bool) {
	if p.ep != nil && p.err == nil {
		p.err = Drive(p.runner, p.ep, p.bot)
	}
	return p.bot.Decide(e, w)
}
