// Package platform hosts the registered scapes and the active training
// runs over one store.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pacsim/internal/agent"
	"pacsim/internal/evo"
	"pacsim/internal/game"
	"pacsim/internal/maze"
	"pacsim/internal/model"
	"pacsim/internal/scape"
	"pacsim/internal/storage"
	"pacsim/internal/training"
)

var DefaultHidden = []int{10}

type Config struct {
	Store  storage.Store
	Logger *slog.Logger
}

// TrainConfig describes one training run over a registered scape.
type TrainConfig struct {
	RunID             string
	ScapeName         string
	PopulationSize    int
	EliteCount        int
	Hidden            []int
	Selector          evo.Selector
	MutationsPerChild int
	Generations       int
	StartGeneration   int
	Workers           int
	Seed              int64
	// ResumeGenomeID seeds every member from a stored genome.
	ResumeGenomeID string
}

type TrainResult struct {
	training.Result
	Lineage []evo.LineageRecord
	Best    evo.ScoredGenome
}

type Polis struct {
	store storage.Store
	log   *slog.Logger

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	runs    map[string]chan struct{}
	started bool
}

func NewPolis(cfg Config) *Polis {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Polis{
		store:  cfg.Store,
		log:    logger,
		scapes: make(map[string]scape.Scape),
		runs:   make(map[string]chan struct{}),
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	return nil
}

func (p *Polis) Store() storage.Store {
	return p.store
}

func (p *Polis) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	p.scapes[name] = s
	return nil
}

// RegisterBlueprints registers one maze scape per embedded blueprint, named
// after the blueprint.
func (p *Polis) RegisterBlueprints(seed int64) error {
	for _, name := range maze.Names() {
		bp, err := maze.Named(name)
		if err != nil {
			return err
		}
		if err := p.RegisterScape(scape.MazeScape{Label: name, Blueprint: bp, Seed: seed}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Polis) GetScape(name string) (scape.Scape, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.scapes[name]
	return s, ok
}

func (p *Polis) RegisteredScapes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.scapes))
	for name := range p.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Train builds a population, runs the trainer against the named scape and
// persists through the polis store. StopRun ends it between evaluations.
func (p *Polis) Train(ctx context.Context, cfg TrainConfig) (TrainResult, error) {
	sc, ok := p.GetScape(cfg.ScapeName)
	if !ok {
		return TrainResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.EliteCount <= 0 {
		cfg.EliteCount = max(1, cfg.PopulationSize/10)
	}
	if len(cfg.Hidden) == 0 {
		cfg.Hidden = DefaultHidden
	}

	evoCfg := evo.Config{
		Size:              cfg.PopulationSize,
		EliteCount:        cfg.EliteCount,
		Selector:          cfg.Selector,
		MutationsPerChild: cfg.MutationsPerChild,
		Rand:              rand.New(rand.NewSource(cfg.Seed)),
	}
	var (
		pop *evo.Population
		err error
	)
	if cfg.ResumeGenomeID != "" {
		seed, loadErr := training.LoadSeed(ctx, p.store, cfg.ResumeGenomeID)
		if loadErr != nil {
			return TrainResult{}, loadErr
		}
		pop, err = evo.NewPopulation(evoCfg, []model.Genome{seed})
	} else {
		pop, err = evo.NewRandomPopulation(evoCfg, game.InputCount, cfg.Hidden, scape.ActionCount)
	}
	if err != nil {
		return TrainResult{}, err
	}

	stop := make(chan struct{})
	if err := p.registerRun(cfg.RunID, stop); err != nil {
		return TrainResult{}, err
	}
	defer p.unregisterRun(cfg.RunID, stop)
	running := func() bool {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}

	trainer, err := training.New[*agent.Cortex](training.Config{
		RunID:           cfg.RunID,
		Generations:     cfg.Generations,
		StartGeneration: cfg.StartGeneration,
		Workers:         cfg.Workers,
		Store:           p.store,
		Logger:          p.log,
	}, sc, pop)
	if err != nil {
		return TrainResult{}, err
	}
	res, err := trainer.Run(ctx, running)
	out := TrainResult{Result: res, Lineage: pop.Lineage()}
	if ranked := pop.Ranked(); len(ranked) > 0 {
		out.Best = ranked[0]
	}
	return out, err
}

// StopRun asks an active run to stop before its next evaluation.
func (p *Polis) StopRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	p.mu.Lock()
	stop, ok := p.runs[runID]
	delete(p.runs, runID)
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	close(stop)
	return nil
}

// ActiveRuns lists the ids of runs in progress.
func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop ends every active run and forgets the registered scapes.
func (p *Polis) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, stop := range p.runs {
		close(stop)
		delete(p.runs, id)
	}
	p.scapes = make(map[string]scape.Scape)
	p.started = false
}

func (p *Polis) registerRun(runID string, stop chan struct{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	if _, exists := p.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	p.runs[runID] = stop
	return nil
}

func (p *Polis) unregisterRun(runID string, stop chan struct{}) {
	p.mu.Lock()
	if p.runs[runID] == stop {
		delete(p.runs, runID)
	}
	p.mu.Unlock()
}
