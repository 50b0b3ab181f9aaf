package game

import (
	"errors"
	"fmt"

	"pacsim/internal/controller"
	"pacsim/internal/maze"
)

const (
	DefaultCellSize           = 24
	DefaultPlayerTicksPerCell = 8
	DefaultGhostTicksPerCell  = 16
	DefaultLives              = 3
	DefaultGhostCount         = 4
	DefaultReleaseBlinks      = 3
	// DefaultReleasePhaseTicks is half a second at 60 ticks per second.
	DefaultReleasePhaseTicks  = 30
	DefaultDeathTicks         = 72
	PelletRadius              = 0.08
)

var (
	ErrNoPlayerSpawn   = errors.New("blueprint has no player spawn")
	ErrNoGhostSpawn    = errors.New("blueprint has no ghost spawn")
	ErrNoStrategy      = errors.New("player strategy is required")
	ErrInvalidSpeed    = errors.New("ticks per cell must be > 0")
	ErrInvalidLives    = errors.New("lives must be > 0")
	ErrInvalidGhostNum = errors.New("ghost count must be >= 0")
)

type ReleaseMode uint8

const (
	// ReleaseAnimated blinks the jail bars before opening the pen.
	ReleaseAnimated ReleaseMode = iota
	// ReleaseImmediate opens the pen on the first tick.
	ReleaseImmediate
)

// Shaping holds the fitness rewards, penalties and degenerate-run limits.
type Shaping struct {
	AliveReward    float64
	CloserReward   float64
	FartherPenalty float64

	WindowSize      int
	WindowMaxUnique int
	StreakPenalty   float64
	StreakLimit     int

	MoveReward       float64
	StillPenalty     float64
	StillSoftLimit   int
	StillSoftPenalty float64
	StillHardLimit   int

	PelletReward float64
	WinReward    float64
	GhostPenalty float64
	PelletCap    int
}

func DefaultShaping() Shaping {
	return Shaping{
		AliveReward:      1,
		CloserReward:     10,
		FartherPenalty:   5,
		WindowSize:       50,
		WindowMaxUnique:  25,
		StreakPenalty:    3,
		StreakLimit:      100,
		MoveReward:       1,
		StillPenalty:     2,
		StillSoftLimit:   50,
		StillSoftPenalty: 1000,
		StillHardLimit:   500,
		PelletReward:     50,
		WinReward:        10000,
		GhostPenalty:     50,
		PelletCap:        50,
	}
}

type Config struct {
	Blueprint  maze.Blueprint
	CellWidth  int
	CellHeight int

	PlayerTicksPerCell int
	GhostTicksPerCell  int

	Lives      int
	GhostCount int
	Difficulty controller.Difficulty

	Player controller.Strategy
	// GhostStrategy builds the strategy for the i-th ghost. Nil uses one
	// shared controller.Ghost at the configured difficulty.
	GhostStrategy func(i int) controller.Strategy

	Release           ReleaseMode
	ReleaseBlinks     int
	ReleasePhaseTicks int
	DeathTicks        int

	// MaxTicks stalls the episode once reached; zero means unlimited.
	MaxTicks int
	// StopDegenerate enables the streak, stillness and pellet-cap stops.
	StopDegenerate bool
	Shaping        Shaping
}

// DefaultConfig is tuned for an interactive game.
func DefaultConfig(bp maze.Blueprint, player controller.Strategy) Config {
	return Config{
		Blueprint:          bp,
		CellWidth:          DefaultCellSize,
		CellHeight:         DefaultCellSize,
		PlayerTicksPerCell: DefaultPlayerTicksPerCell,
		GhostTicksPerCell:  DefaultGhostTicksPerCell,
		Lives:              DefaultLives,
		GhostCount:         DefaultGhostCount,
		Difficulty:         controller.Medium,
		Player:             player,
		Release:            ReleaseAnimated,
		ReleaseBlinks:      DefaultReleaseBlinks,
		ReleasePhaseTicks:  DefaultReleasePhaseTicks,
		DeathTicks:         DefaultDeathTicks,
		Shaping:            DefaultShaping(),
	}
}

// TrainingConfig runs headless: one life, equal speeds, an open pen and
// the degenerate-run stops.
func TrainingConfig(bp maze.Blueprint, player controller.Strategy) Config {
	cfg := DefaultConfig(bp, player)
	cfg.GhostTicksPerCell = DefaultPlayerTicksPerCell
	cfg.Lives = 1
	cfg.Difficulty = controller.Hard
	cfg.Release = ReleaseImmediate
	cfg.DeathTicks = 0
	cfg.MaxTicks = 20000
	cfg.StopDegenerate = true
	return cfg
}

func (c Config) validate() error {
	if err := c.Blueprint.Validate(); err != nil {
		return err
	}
	if c.Player == nil {
		return ErrNoStrategy
	}
	if c.PlayerTicksPerCell <= 0 || c.GhostTicksPerCell <= 0 {
		return ErrInvalidSpeed
	}
	if c.Lives <= 0 {
		return ErrInvalidLives
	}
	if c.GhostCount < 0 {
		return ErrInvalidGhostNum
	}
	if _, err := controller.ParseDifficulty(string(c.Difficulty)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
