// Package pacsim is the programmatic entry point for training and
// evaluating maze controllers.
package pacsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pacsim/internal/agent"
	"pacsim/internal/evo"
	"pacsim/internal/maze"
	"pacsim/internal/model"
	"pacsim/internal/platform"
	"pacsim/internal/scape"
	"pacsim/internal/stats"
	"pacsim/internal/storage"
)

const (
	defaultRunsDir   = "runs"
	defaultDBPath    = "pacsim.db"
	defaultBlueprint = "classic"
)

type Options struct {
	StoreKind string
	DBPath    string
	RunsDir   string
	// Seed fixes the episode randomness of every registered scape.
	Seed   int64
	Logger *slog.Logger
}

type Client struct {
	store   storage.Store
	polis   *platform.Polis
	runsDir string
	seed    int64
	log     *slog.Logger
}

type TrainRequest struct {
	RunID             string
	Blueprint         string
	Population        int
	Generations       int
	StartGeneration   int
	Hidden            []int
	EliteCount        int
	Selection         string
	MutationsPerChild int
	Workers           int
	Seed              int64
	ResumeGenomeID    string
}

type TrainSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	BestGenomeID     string
	// ChampionID is the best member of the last evaluated generation.
	ChampionID string
	HighScore  int
	Stopped    bool
}

type EvaluateRequest struct {
	GenomeID string
	// Best evaluates the stored best genome instead of GenomeID.
	Best      bool
	Blueprint string
}

type EvaluateSummary struct {
	GenomeID     string
	Blueprint    string
	Fitness      float64
	PelletsEaten int
	Score        int
	Ticks        int
	Status       string
}

type BestSummary struct {
	GenomeID          string
	Fitness           float64
	RunID             string
	Generation        int
	HighScore         int
	HighScoreGenomeID string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Blueprint        string
	Population       int
	Generations      int
	Seed             int64
	FinalBestFitness float64
	HighScore        int
	Stopped          bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = "memory"
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:   store,
		runsDir: runsDir,
		seed:    opts.Seed,
		log:     logger,
	}, nil
}

func (c *Client) Close() error {
	if c.polis != nil {
		c.polis.Stop()
	}
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

// Blueprints lists the embedded maze layouts that can be trained on.
func (c *Client) Blueprints() []string {
	return maze.Names()
}

func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.Blueprint == "" {
		req.Blueprint = defaultBlueprint
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.Selection == "" {
		req.Selection = "elite"
	}
	if len(req.Hidden) == 0 {
		req.Hidden = platform.DefaultHidden
	}
	if req.MutationsPerChild <= 0 {
		req.MutationsPerChild = 1
	}
	if req.StartGeneration <= 0 {
		req.StartGeneration = 1
	}
	if req.StartGeneration > 1 && req.ResumeGenomeID == "" {
		return TrainSummary{}, errors.New("a start generation requires a genome to resume from")
	}
	selector, err := evo.SelectorByName(req.Selection)
	if err != nil {
		return TrainSummary{}, err
	}

	p, err := c.ensurePolis(ctx)
	if err != nil {
		return TrainSummary{}, err
	}
	now := time.Now().UTC()
	res, err := p.Train(ctx, platform.TrainConfig{
		RunID:             req.RunID,
		ScapeName:         req.Blueprint,
		PopulationSize:    req.Population,
		EliteCount:        req.EliteCount,
		Hidden:            req.Hidden,
		Selector:          selector,
		MutationsPerChild: req.MutationsPerChild,
		Generations:       req.Generations,
		StartGeneration:   req.StartGeneration,
		Workers:           req.Workers,
		Seed:              req.Seed,
		ResumeGenomeID:    req.ResumeGenomeID,
	})
	if err != nil {
		return TrainSummary{}, err
	}

	champion := res.Best.Genome
	if champion.ID != "" {
		if err := storage.SaveGenome(ctx, c.store, champion); err != nil {
			return TrainSummary{}, fmt.Errorf("save champion: %w", err)
		}
	}

	lineage := make([]stats.LineageEntry, 0, len(res.Lineage))
	for _, rec := range res.Lineage {
		lineage = append(lineage, stats.LineageEntry{
			GenomeID:   rec.GenomeID,
			ParentID:   rec.ParentID,
			Generation: rec.Generation,
			Operation:  rec.Operation,
		})
	}
	var best *model.Genome
	if champion.ID != "" {
		best = &champion
	}
	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:             res.RunID,
			Scape:             req.Blueprint,
			PopulationSize:    req.Population,
			Hidden:            req.Hidden,
			Generations:       req.Generations,
			StartGeneration:   req.StartGeneration,
			ResumeGenomeID:    req.ResumeGenomeID,
			Seed:              req.Seed,
			Workers:           req.Workers,
			EliteCount:        req.EliteCount,
			Selection:         req.Selection,
			MutationsPerChild: req.MutationsPerChild,
		},
		Diagnostics:      res.Diagnostics,
		Lineage:          lineage,
		BestGenome:       best,
		FinalBestFitness: res.BestFitness,
		HighScore:        res.HighScore,
		Stopped:          res.Stopped,
	})
	if err != nil {
		return TrainSummary{}, err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:            res.RunID,
		Scape:            req.Blueprint,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		FinalBestFitness: res.BestFitness,
		HighScore:        res.HighScore,
		Stopped:          res.Stopped,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return TrainSummary{}, err
	}

	series := make([]float64, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		series[i] = d.BestFitness
	}
	return TrainSummary{
		RunID:            res.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: series,
		FinalBestFitness: res.BestFitness,
		BestGenomeID:     res.BestGenomeID,
		ChampionID:       champion.ID,
		HighScore:        res.HighScore,
		Stopped:          res.Stopped,
	}, nil
}

// StopRun stops an active training run before its next evaluation.
func (c *Client) StopRun(runID string) error {
	if c.polis == nil {
		return fmt.Errorf("run not active: %s", runID)
	}
	return c.polis.StopRun(runID)
}

// LoadCortex returns a runnable controller for a stored genome, or for the
// stored best genome when best is set.
func (c *Client) LoadCortex(ctx context.Context, genomeID string, best bool) (*agent.Cortex, error) {
	if genomeID != "" && best {
		return nil, errors.New("use either genome id or best")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	var (
		genome model.Genome
		ok     bool
		err    error
	)
	switch {
	case best:
		genome, _, ok, err = storage.LoadBestGenome(ctx, c.store)
		if err == nil && !ok {
			err = errors.New("no best genome stored")
		}
	case genomeID != "":
		genome, ok, err = storage.LoadGenome(ctx, c.store, genomeID)
		if err == nil && !ok {
			err = fmt.Errorf("genome not found: %s", genomeID)
		}
	default:
		err = errors.New("a genome id or best is required")
	}
	if err != nil {
		return nil, err
	}
	return agent.NewCortex(genome)
}

// Evaluate runs one headless training episode with a stored genome.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	if req.Blueprint == "" {
		req.Blueprint = defaultBlueprint
	}
	cortex, err := c.LoadCortex(ctx, req.GenomeID, req.Best)
	if err != nil {
		return EvaluateSummary{}, err
	}
	sc, ok := c.polis.GetScape(req.Blueprint)
	if !ok {
		return EvaluateSummary{}, fmt.Errorf("%w: %s", maze.ErrUnknownBlueprint, req.Blueprint)
	}
	fitness, trace, err := sc.Evaluate(ctx, cortex)
	if err != nil {
		return EvaluateSummary{}, err
	}
	return EvaluateSummary{
		GenomeID:     cortex.ID(),
		Blueprint:    req.Blueprint,
		Fitness:      float64(fitness),
		PelletsEaten: trace.Int(scape.TracePellets),
		Score:        trace.Int(scape.TraceScore),
		Ticks:        trace.Int(scape.TraceTicks),
		Status:       trace.String(scape.TraceStatus),
	}, nil
}

// Best reports the stored best genome and high score.
func (c *Client) Best(ctx context.Context) (BestSummary, bool, error) {
	if _, err := c.ensurePolis(ctx); err != nil {
		return BestSummary{}, false, err
	}
	_, record, ok, err := storage.LoadBestGenome(ctx, c.store)
	if err != nil || !ok {
		return BestSummary{}, false, err
	}
	summary := BestSummary{
		GenomeID:   record.GenomeID,
		Fitness:    record.Fitness,
		RunID:      record.RunID,
		Generation: record.Generation,
	}
	score, ok, err := storage.LoadHighScore(ctx, c.store)
	if err != nil {
		return BestSummary{}, false, err
	}
	if ok {
		summary.HighScore = score.Score
		summary.HighScoreGenomeID = score.GenomeID
	}
	return summary, true, nil
}

// Genomes lists the ids of every stored genome.
func (c *Client) Genomes(ctx context.Context) ([]string, error) {
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	return storage.ListGenomeIDs(ctx, c.store)
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	items := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Blueprint:        e.Scape,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			Seed:             e.Seed,
			FinalBestFitness: e.FinalBestFitness,
			HighScore:        e.HighScore,
			Stopped:          e.Stopped,
		})
	}
	return items, nil
}

// Diagnostics returns the stored per-generation summary of a run.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := storage.LoadDiagnostics(ctx, c.store, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	return diagnostics, nil
}

// Export copies a run's artifacts to outDir.
func (c *Client) Export(runID, outDir string) (string, error) {
	if outDir == "" {
		outDir = "exports"
	}
	return stats.ExportRunArtifacts(c.runsDir, runID, outDir)
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store, Logger: c.log})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	if err := p.RegisterBlueprints(c.seed); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}

// Scape returns the registered maze scape for a blueprint.
func (c *Client) Scape(ctx context.Context, blueprint string) (scape.MazeScape, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return scape.MazeScape{}, err
	}
	sc, ok := p.GetScape(blueprint)
	if !ok {
		return scape.MazeScape{}, fmt.Errorf("%w: %s", maze.ErrUnknownBlueprint, blueprint)
	}
	ms, ok := sc.(scape.MazeScape)
	if !ok {
		return scape.MazeScape{}, fmt.Errorf("scape %s is not a maze", blueprint)
	}
	return ms, nil
}
