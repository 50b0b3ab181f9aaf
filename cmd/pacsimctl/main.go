package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"pacsim/internal/stats"
	"pacsim/internal/storage"
	"pacsim/pkg/pacsim"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
	dbPath     = "pacsim.db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "play":
		return runPlay(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "eval":
		return runEval(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "spectate":
		return runSpectate(ctx, args[1:])
	case "genomes":
		return runGenomes(ctx, args[1:])
	case "blueprints":
		return runBlueprints(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// storeFlags are shared by every command that opens the store.
type storeFlags struct {
	kind     *string
	path     *string
	runs     *string
	logLevel *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:     fs.String("store", storage.KindSQLite, "store backend: "+strings.Join(storage.Kinds(), "|")),
		path:     fs.String("db-path", dbPath, "sqlite database path"),
		runs:     fs.String("runs-dir", runsDir, "run artifacts directory"),
		logLevel: fs.String("log-level", "info", "log level: debug|info|warn|error"),
	}
}

func (f storeFlags) open(seed int64) (*pacsim.Client, error) {
	logger, err := newLogger(os.Stderr, *f.logLevel)
	if err != nil {
		return nil, err
	}
	return pacsim.New(pacsim.Options{
		StoreKind: *f.kind,
		DBPath:    *f.path,
		RunsDir:   *f.runs,
		Seed:      seed,
		Logger:    logger,
	})
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config YAML path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	blueprint := fs.String("blueprint", "classic", "maze blueprint")
	population := fs.Int("pop", 50, "population size")
	generations := fs.Int("gens", 100, "generation count")
	startGen := fs.Int("start-gen", 1, "first generation number (requires resume-genome when > 1)")
	hidden := fs.String("hidden", "10", "comma separated hidden layer widths")
	elite := fs.Int("elite", 0, "elite count (0 uses a tenth of the population)")
	selection := fs.String("selection", "elite", "parent selection strategy: elite|tournament")
	mutations := fs.Int("mutations", 1, "mutations applied per child")
	workers := fs.Int("workers", 4, "worker count")
	seed := fs.Int64("seed", 1, "rng seed")
	resumeGenome := fs.String("resume-genome", "", "seed the population from a stored genome id")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultTrainRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		layers, err := parseHidden(*hidden)
		if err != nil {
			return err
		}
		req = pacsim.TrainRequest{
			RunID:             *runID,
			Blueprint:         *blueprint,
			Population:        *population,
			Generations:       *generations,
			StartGeneration:   *startGen,
			Hidden:            layers,
			EliteCount:        *elite,
			Selection:         *selection,
			MutationsPerChild: *mutations,
			Workers:           *workers,
			Seed:              *seed,
			ResumeGenomeID:    *resumeGenome,
		}
	} else if err := overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":        *runID,
		"blueprint":     *blueprint,
		"pop":           *population,
		"gens":          *generations,
		"start-gen":     *startGen,
		"hidden":        *hidden,
		"elite":         *elite,
		"selection":     *selection,
		"mutations":     *mutations,
		"workers":       *workers,
		"seed":          *seed,
		"resume-genome": *resumeGenome,
	}); err != nil {
		return err
	}
	if req.Population < 0 || req.Generations < 0 || req.Workers < 0 {
		return errors.New("pop, gens and workers must be >= 0")
	}

	client, err := sf.open(req.Seed)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s generations=%s best_fitness=%s best_genome=%s champion=%s high_score=%s stopped=%t\n",
		summary.RunID,
		humanize.Comma(int64(len(summary.BestByGeneration))),
		humanize.FormatFloat("#,###.##", summary.FinalBestFitness),
		summary.BestGenomeID,
		summary.ChampionID,
		humanize.Comma(int64(summary.HighScore)),
		summary.Stopped,
	)
	fmt.Printf("artifacts=%s\n", summary.ArtifactsDir)
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	genomeID := fs.String("genome-id", "", "stored genome id")
	best := fs.Bool("best", false, "evaluate the stored best genome")
	blueprint := fs.String("blueprint", "classic", "maze blueprint")
	seed := fs.Int64("seed", 1, "episode rng seed")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *genomeID != "" && *best {
		return errors.New("use either --genome-id or --best, not both")
	}
	if *genomeID == "" && !*best {
		return errors.New("eval requires --genome-id or --best")
	}

	client, err := sf.open(*seed)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Evaluate(ctx, pacsim.EvaluateRequest{GenomeID: *genomeID, Best: *best, Blueprint: *blueprint})
	if err != nil {
		return err
	}
	fmt.Printf("genome_id=%s blueprint=%s fitness=%s pellets=%d score=%s ticks=%s status=%s\n",
		res.GenomeID,
		res.Blueprint,
		humanize.FormatFloat("#,###.##", res.Fitness),
		res.PelletsEaten,
		humanize.Comma(int64(res.Score)),
		humanize.Comma(int64(res.Ticks)),
		res.Status,
	)
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit the best genome summary as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.open(0)
	if err != nil {
		return err
	}
	defer client.Close()

	best, ok, err := client.Best(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no best genome stored")
		return nil
	}
	if *jsonOut {
		return writeJSON(os.Stdout, best)
	}
	fmt.Printf("genome_id=%s fitness=%s run_id=%s generation=%d high_score=%s high_score_genome=%s\n",
		best.GenomeID,
		humanize.FormatFloat("#,###.##", best.Fitness),
		best.RunID,
		best.Generation,
		humanize.Comma(int64(best.HighScore)),
		best.HighScoreGenomeID,
	)
	return nil
}

func runGenomes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("genomes", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit genome ids as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sf.open(0)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.Genomes(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, ids)
	}
	if len(ids) == 0 {
		fmt.Println("no genomes stored")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("total=%s\n", humanize.Comma(int64(len(ids))))
	return nil
}

func runBlueprints(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("blueprints", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := pacsim.New(pacsim.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		return err
	}
	defer client.Close()
	fmt.Println(strings.Join(client.Blueprints(), "\n"))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := sf.open(0)
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Runs(ctx, pacsim.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, items)
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, item := range items {
		fmt.Printf("run_id=%s created=%q blueprint=%s pop=%d gens=%d seed=%d best=%s high_score=%s stopped=%t\n",
			item.RunID,
			createdLabel(item.CreatedAtUTC),
			item.Blueprint,
			item.Population,
			item.Generations,
			item.Seed,
			humanize.FormatFloat("#,###.##", item.FinalBestFitness),
			humanize.Comma(int64(item.HighScore)),
			item.Stopped,
		)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run from run index")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := resolveRunID(*sf.runs, *runID, *latest)
	if err != nil {
		return err
	}

	client, err := sf.open(0)
	if err != nil {
		return err
	}
	defer client.Close()

	diagnostics, err := client.Diagnostics(ctx, id)
	if err != nil {
		// A memory store forgets diagnostics between invocations; the run
		// directory keeps them.
		fromDisk, ok, readErr := stats.ReadDiagnostics(*sf.runs, id)
		if readErr != nil || !ok {
			return err
		}
		diagnostics = fromDisk
	}
	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%s mean=%s min=%s pellets=%d\n",
			d.Generation,
			humanize.FormatFloat("#,###.##", d.BestFitness),
			humanize.FormatFloat("#,###.##", d.MeanFitness),
			humanize.FormatFloat("#,###.##", d.MinFitness),
			d.PelletsEaten,
		)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := resolveRunID(*sf.runs, *runID, *latest)
	if err != nil {
		return err
	}

	client, err := sf.open(0)
	if err != nil {
		return err
	}
	defer client.Close()

	exportedDir, err := client.Export(id, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", id, filepath.Clean(exportedDir))
	return nil
}

func resolveRunID(baseDir, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either --run-id or --latest, not both")
	}
	if runID == "" && !latest {
		return "", errors.New("requires --run-id or --latest")
	}
	if runID != "" {
		return runID, nil
	}
	entries, err := stats.ListRunIndex(baseDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: pacsimctl <play|train|eval|best|genomes|spectate|blueprints|runs|diagnostics|export> [flags]", msg)
}
