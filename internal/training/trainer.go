// Package training runs the generational loop: evaluate every genome of a
// population against a scape, record the generation and evolve.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pacsim/internal/model"
	"pacsim/internal/scape"
	"pacsim/internal/storage"
)

// Genome is one evaluable controller.
type Genome interface {
	ID() string
	Propagate(inputs []float64) ([]float64, error)
	Fitness() float64
	SetFitness(f float64)
	Genome() model.Genome
}

type Population[G Genome] interface {
	Genomes() []G
	Evolve(ctx context.Context) error
}

type Config struct {
	RunID string
	// Generations is the number of the last generation to run.
	Generations int
	// StartGeneration is the number of the first generation, 1 for a
	// fresh run.
	StartGeneration int
	Workers         int
	Store           storage.Store
	Logger          *slog.Logger
}

type Result struct {
	RunID        string
	Diagnostics  []model.GenerationDiagnostics
	BestFitness  float64
	BestGenomeID string
	HighScore    int
	// Stopped is set when running reported false before the last
	// generation finished.
	Stopped bool
}

type Trainer[G Genome] struct {
	cfg        Config
	scape      scape.Scape
	population Population[G]
	log        *slog.Logger
}

var errStopped = errors.New("training stopped")

func New[G Genome](cfg Config, s scape.Scape, population Population[G]) (*Trainer[G], error) {
	if s == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if population == nil {
		return nil, fmt.Errorf("population is required")
	}
	if cfg.StartGeneration <= 0 {
		cfg.StartGeneration = 1
	}
	if cfg.Generations < cfg.StartGeneration {
		return nil, fmt.Errorf("generations must be >= start generation (%d)", cfg.StartGeneration)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer[G]{
		cfg:        cfg,
		scape:      s,
		population: population,
		log:        logger.With("run_id", cfg.RunID, "scape", s.Name()),
	}, nil
}

type evaluation struct {
	fitness float64
	trace   scape.Trace
	err     error
}

// Run trains until the last generation, until running returns false or
// until ctx is done. A nil running never stops the loop. A stop leaves the
// interrupted generation unrecorded.
func (t *Trainer[G]) Run(ctx context.Context, running func() bool) (Result, error) {
	if running == nil {
		running = func() bool { return true }
	}
	result := Result{RunID: t.cfg.RunID}
	t.log.Info("training started", "from", t.cfg.StartGeneration, "to", t.cfg.Generations, "workers", t.cfg.Workers)

	for gen := t.cfg.StartGeneration; gen <= t.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !running() {
			result.Stopped = true
			break
		}

		genomes := t.population.Genomes()
		if len(genomes) == 0 {
			return result, fmt.Errorf("generation %d: population is empty", gen)
		}
		evals, err := t.evaluate(ctx, genomes, running)
		if errors.Is(err, errStopped) {
			result.Stopped = true
			break
		}
		if err != nil {
			return result, fmt.Errorf("generation %d: %w", gen, err)
		}
		for i, g := range genomes {
			g.SetFitness(evals[i].fitness)
		}

		diag, best := summarize(gen, genomes, evals)
		diag.RunID = t.cfg.RunID
		result.Diagnostics = append(result.Diagnostics, diag)
		if len(result.Diagnostics) == 1 || diag.BestFitness >= result.BestFitness {
			result.BestFitness = diag.BestFitness
			result.BestGenomeID = diag.BestGenomeID
		}
		score, scorer := highScore(evals)
		result.HighScore = max(result.HighScore, score)

		if err := t.persist(ctx, gen, genomes[best], diag, score, genomes[scorer].ID()); err != nil {
			return result, fmt.Errorf("generation %d: %w", gen, err)
		}
		t.log.Info("generation",
			"generation", gen,
			"best", diag.BestFitness,
			"mean", diag.MeanFitness,
			"std", diag.StdFitness,
			"min", diag.MinFitness,
			"best_genome", diag.BestGenomeID,
			"pellets", diag.PelletsEaten,
			"mean_ticks", diag.MeanTicks,
		)

		if gen < t.cfg.Generations {
			if err := t.population.Evolve(ctx); err != nil {
				return result, fmt.Errorf("evolve generation %d: %w", gen, err)
			}
		}
	}

	t.log.Info("training finished", "best", result.BestFitness, "best_genome", result.BestGenomeID, "stopped", result.Stopped)
	return result, nil
}

// evaluate scores genomes on a pool of workers. Each evaluation builds its
// own episode inside the scape; only the score and trace come back.
func (t *Trainer[G]) evaluate(ctx context.Context, genomes []G, running func() bool) ([]evaluation, error) {
	type job struct {
		idx    int
		genome G
	}
	type result struct {
		idx int
		evaluation
	}

	jobs := make(chan job)
	results := make(chan result, len(genomes))

	workerCount := min(t.cfg.Workers, len(genomes))
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, evaluation: evaluation{err: err}}
					continue
				}
				fitness, trace, err := t.scape.Evaluate(ctx, j.genome)
				results <- result{idx: j.idx, evaluation: evaluation{fitness: float64(fitness), trace: trace, err: err}}
			}
		}()
	}

	stopped := false
	for i := range genomes {
		if !running() {
			stopped = true
			break
		}
		jobs <- job{idx: i, genome: genomes[i]}
	}
	close(jobs)
	wg.Wait()
	close(results)

	evals := make([]evaluation, len(genomes))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("genome %s: %w", genomes[res.idx].ID(), res.err)
		}
		evals[res.idx] = res.evaluation
	}
	if stopped {
		return nil, errStopped
	}
	return evals, nil
}

func summarize[G Genome](gen int, genomes []G, evals []evaluation) (model.GenerationDiagnostics, int) {
	fitness := make([]float64, len(evals))
	ticks := make([]float64, len(evals))
	for i, e := range evals {
		fitness[i] = e.fitness
		ticks[i] = float64(e.trace.Int(scape.TraceTicks))
	}
	best := floats.MaxIdx(fitness)
	std := 0.0
	if len(fitness) > 1 {
		std = stat.StdDev(fitness, nil)
	}
	return model.GenerationDiagnostics{
		Generation:   gen,
		BestFitness:  fitness[best],
		MeanFitness:  stat.Mean(fitness, nil),
		StdFitness:   std,
		MinFitness:   floats.Min(fitness),
		BestGenomeID: genomes[best].ID(),
		PelletsEaten: evals[best].trace.Int(scape.TracePellets),
		MeanTicks:    stat.Mean(ticks, nil),
		LongestTicks: int(floats.Max(ticks)),
	}, best
}

// highScore returns the most pellets eaten in one evaluation and the index
// of the first genome that ate them.
func highScore(evals []evaluation) (int, int) {
	score, idx := 0, 0
	for i, e := range evals {
		if eaten := e.trace.Int(scape.TracePellets); eaten > score {
			score, idx = eaten, i
		}
	}
	return score, idx
}

func (t *Trainer[G]) persist(ctx context.Context, gen int, best G, diag model.GenerationDiagnostics, score int, scorerID string) error {
	if t.cfg.Store == nil {
		return nil
	}
	replaced, err := storage.SaveBestGenome(ctx, t.cfg.Store, best.Genome(), model.BestGenomeRecord{
		Fitness:    diag.BestFitness,
		RunID:      t.cfg.RunID,
		Generation: gen,
	})
	if err != nil {
		return fmt.Errorf("save best genome: %w", err)
	}
	if replaced {
		t.log.Debug("best genome replaced", "genome", best.ID(), "fitness", diag.BestFitness)
	}
	if _, err := storage.SaveHighScore(ctx, t.cfg.Store, score, scorerID); err != nil {
		return fmt.Errorf("save high score: %w", err)
	}
	if err := storage.AppendDiagnostics(ctx, t.cfg.Store, t.cfg.RunID, diag); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}
	return nil
}

// LoadSeed fetches the genome a resumed run is seeded from.
func LoadSeed(ctx context.Context, s storage.Store, genomeID string) (model.Genome, error) {
	if s == nil {
		return model.Genome{}, fmt.Errorf("a store is required to resume from genome %s", genomeID)
	}
	genome, ok, err := storage.LoadGenome(ctx, s, genomeID)
	if err != nil {
		return model.Genome{}, err
	}
	if !ok {
		return model.Genome{}, fmt.Errorf("genome %s not found", genomeID)
	}
	return genome, nil
}
