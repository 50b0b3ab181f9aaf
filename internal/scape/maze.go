package scape

import (
	"context"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"pacsim/internal/controller"
	"pacsim/internal/entity"
	"pacsim/internal/game"
	"pacsim/internal/maze"
)

// ActionCount is the number of network outputs read per tick: keep the
// current intent, then up, down, left and right.
const ActionCount = 5

// MazeScape scores an agent by letting it steer the player through one
// headless training episode.
type MazeScape struct {
	// Label names the scape in a registry; empty means "maze".
	Label     string
	Blueprint maze.Blueprint
	Seed      int64
	// Configure adjusts the training configuration before each episode.
	Configure func(*game.Config)
}

func NewMazeScape(bp maze.Blueprint, seed int64) MazeScape {
	return MazeScape{Blueprint: bp, Seed: seed}
}

func (s MazeScape) Name() string {
	if s.Label == "" {
		return "maze"
	}
	return s.Label
}

// Episode builds the episode an agent would be evaluated on, driven by the
// returned decision-mode bot.
func (s MazeScape) Episode() (*game.Episode, *controller.Bot, error) {
	bot := controller.NewBot(controller.Decision)
	cfg := game.TrainingConfig(s.Blueprint, bot)
	if len(s.Blueprint.FindAll(maze.SymbolGhost)) == 0 {
		cfg.GhostCount = 0
	}
	if s.Configure != nil {
		s.Configure(&cfg)
	}
	ep, err := game.NewEpisode(cfg, rand.New(rand.NewSource(s.Seed)))
	if err != nil {
		return nil, nil, err
	}
	return ep, bot, nil
}

func (s MazeScape) Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error) {
	runner, ok := agent.(PropagateAgent)
	if !ok {
		return 0, nil, fmt.Errorf("agent %s does not implement propagate", agent.ID())
	}
	ep, bot, err := s.Episode()
	if err != nil {
		return 0, nil, err
	}

	for !ep.Status().Terminal() {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		if err := Drive(runner, ep, bot); err != nil {
			return 0, nil, fmt.Errorf("agent %s: %w", agent.ID(), err)
		}
		ep.Tick()
	}

	res := ep.Result()
	return Fitness(res.Fitness), Trace{
		TracePellets: res.PelletsEaten,
		TraceScore:   res.Score,
		TraceTicks:   res.Ticks,
		TraceStatus:  res.Status.String(),
	}, nil
}

// Drive feeds the episode's sensors to runner and turns the answer into
// the bot's intent for the next tick.
func Drive(runner PropagateAgent, ep *game.Episode, bot *controller.Bot) error {
	outputs, err := runner.Propagate(ep.Inputs())
	if err != nil {
		return err
	}
	bot.SetIntent(DecodeAction(outputs))
	return nil
}

// DecodeAction takes the arg-max of outputs. Index 0 and an empty vector
// mean no change; ties resolve to the lowest index.
func DecodeAction(outputs []float64) entity.Direction {
	if len(outputs) == 0 {
		return entity.None
	}
	idx := floats.MaxIdx(outputs)
	if idx == 0 || idx > len(maze.Directions) {
		return entity.None
	}
	return maze.Directions[idx-1]
}
