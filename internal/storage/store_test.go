package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pacsim/internal/model"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "pacsim.db"))
	t.Cleanup(func() {
		_ = sqlite.Close()
	})
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func testGenome(id string) model.Genome {
	return model.Genome{
		ID:        id,
		Neurons:   []model.Neuron{{ID: "i", Activation: "identity"}, {ID: "o", Layer: 1, Activation: "identity", Bias: 0.5}},
		Synapses:  []model.Synapse{{ID: "s", From: "i", To: "o", Weight: 1.25, Enabled: true}},
		InputIDs:  []string{"i"},
		OutputIDs: []string{"o"},
	}
}

func TestStoreRequiresInit(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotInitialized) {
				t.Fatalf("expected ErrNotInitialized on get, got %v", err)
			}
			if err := store.Set(ctx, "k", []byte("v")); !errors.Is(err, ErrNotInitialized) {
				t.Fatalf("expected ErrNotInitialized on set, got %v", err)
			}
		})
	}
}

func TestStoreGetSet(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
			}
			if err := store.Set(ctx, "k", []byte("one")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "k", []byte("two")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := store.Get(ctx, "k")
			if err != nil || !ok || string(got) != "two" {
				t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestGenomeRecords(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			if err := SaveGenome(ctx, store, testGenome("g1")); err != nil {
				t.Fatalf("save genome: %v", err)
			}
			loaded, ok, err := LoadGenome(ctx, store, "g1")
			if err != nil || !ok {
				t.Fatalf("load genome: ok=%v err=%v", ok, err)
			}
			if loaded.SchemaVersion != CurrentSchemaVersion || loaded.Synapses[0].Weight != 1.25 {
				t.Fatalf("unexpected genome loaded: %+v", loaded)
			}
			if _, ok, err := LoadGenome(ctx, store, "nope"); err != nil || ok {
				t.Fatalf("expected missing genome, ok=%v err=%v", ok, err)
			}
			if err := SaveGenome(ctx, store, model.Genome{}); err == nil {
				t.Fatal("expected missing id error")
			}
		})
	}
}

func TestBestGenomeKeepsFittestWithinRun(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			if _, _, ok, err := LoadBestGenome(ctx, store); err != nil || ok {
				t.Fatalf("expected no best genome, ok=%v err=%v", ok, err)
			}

			replaced, err := SaveBestGenome(ctx, store, testGenome("a"), model.BestGenomeRecord{Fitness: 10, RunID: "r", Generation: 1})
			if err != nil || !replaced {
				t.Fatalf("first save: replaced=%v err=%v", replaced, err)
			}
			replaced, err = SaveBestGenome(ctx, store, testGenome("b"), model.BestGenomeRecord{Fitness: 5, RunID: "r", Generation: 2})
			if err != nil || replaced {
				t.Fatalf("worse genome must not replace best: replaced=%v err=%v", replaced, err)
			}
			if _, ok, err := LoadGenome(ctx, store, "b"); err != nil || !ok {
				t.Fatalf("generation best must be stored even when not the record: ok=%v err=%v", ok, err)
			}
			genome, record, ok, err := LoadBestGenome(ctx, store)
			if err != nil || !ok {
				t.Fatalf("load best: ok=%v err=%v", ok, err)
			}
			if genome.ID != "a" || record.GenomeID != "a" || record.Fitness != 10 || record.Generation != 1 {
				t.Fatalf("unexpected best: genome=%s record=%+v", genome.ID, record)
			}

			if _, err := SaveBestGenome(ctx, store, testGenome("c"), model.BestGenomeRecord{Fitness: 11, RunID: "r", Generation: 3}); err != nil {
				t.Fatalf("better save: %v", err)
			}
			if genome, _, _, _ := LoadBestGenome(ctx, store); genome.ID != "c" {
				t.Fatalf("expected c to become best, got %s", genome.ID)
			}
		})
	}
}

func TestBestGenomeTakenOverByLaterRun(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			if _, err := SaveBestGenome(ctx, store, testGenome("corridor-best"), model.BestGenomeRecord{Fitness: 10500, RunID: "run-corridor", Generation: 9}); err != nil {
				t.Fatalf("save corridor best: %v", err)
			}
			replaced, err := SaveBestGenome(ctx, store, testGenome("classic-gen1"), model.BestGenomeRecord{Fitness: 80, RunID: "run-classic", Generation: 1})
			if err != nil || !replaced {
				t.Fatalf("a new run must take over the record: replaced=%v err=%v", replaced, err)
			}
			genome, record, ok, err := LoadBestGenome(ctx, store)
			if err != nil || !ok {
				t.Fatalf("load best: ok=%v err=%v", ok, err)
			}
			if genome.ID != "classic-gen1" || record.RunID != "run-classic" || record.Fitness != 80 {
				t.Fatalf("unexpected best after new run: genome=%s record=%+v", genome.ID, record)
			}
			if _, ok, err := LoadGenome(ctx, store, "corridor-best"); err != nil || !ok {
				t.Fatalf("earlier run's genome must stay stored: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestHighScoreOnlyIncreases(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			for _, step := range []struct {
				score int
				want  bool
			}{{3, true}, {2, false}, {3, false}, {7, true}} {
				got, err := SaveHighScore(ctx, store, step.score, "g")
				if err != nil {
					t.Fatalf("save %d: %v", step.score, err)
				}
				if got != step.want {
					t.Fatalf("save %d: replaced=%v want %v", step.score, got, step.want)
				}
			}
			score, ok, err := LoadHighScore(ctx, store)
			if err != nil || !ok || score.Score != 7 {
				t.Fatalf("unexpected high score: %+v ok=%v err=%v", score, ok, err)
			}
		})
	}
}

func TestDiagnosticsAppend(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			for gen := 1; gen <= 3; gen++ {
				d := model.GenerationDiagnostics{Generation: gen, BestFitness: float64(gen * 10)}
				if err := AppendDiagnostics(ctx, store, "run-1", d); err != nil {
					t.Fatalf("append %d: %v", gen, err)
				}
			}
			history, ok, err := LoadDiagnostics(ctx, store, "run-1")
			if err != nil || !ok {
				t.Fatalf("load diagnostics: ok=%v err=%v", ok, err)
			}
			if len(history) != 3 || history[2].BestFitness != 30 || history[0].RunID != "run-1" {
				t.Fatalf("unexpected diagnostics: %+v", history)
			}
			if _, ok, _ := LoadDiagnostics(ctx, store, "run-2"); ok {
				t.Fatal("expected no diagnostics for unknown run")
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pacsim.db")

	first := NewSQLiteStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := SaveHighScore(ctx, first, 42, "g"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})
	score, ok, err := LoadHighScore(ctx, second)
	if err != nil || !ok || score.Score != 42 {
		t.Fatalf("expected persisted high score, got %+v ok=%v err=%v", score, ok, err)
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil || store == nil {
		t.Fatalf("new memory store: %v", err)
	}
	store, err = NewStore("sqlite", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
	if _, err := NewStore(KindSQLite, ""); err == nil {
		t.Fatal("expected sqlite path error")
	}
	if store, err := NewStore("MEMORY", ""); err != nil || store == nil {
		t.Fatalf("expected case-insensitive kind, err=%v", err)
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestListByPrefix(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.List(ctx, ""); !errors.Is(err, ErrNotInitialized) {
				t.Fatalf("expected ErrNotInitialized on list, got %v", err)
			}
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			for _, id := range []string{"b", "a", "c"} {
				if err := SaveGenome(ctx, store, testGenome(id)); err != nil {
					t.Fatalf("save %s: %v", id, err)
				}
			}
			if _, err := SaveHighScore(ctx, store, 3, "a"); err != nil {
				t.Fatalf("save high score: %v", err)
			}
			if err := AppendDiagnostics(ctx, store, "run-1", model.GenerationDiagnostics{Generation: 1}); err != nil {
				t.Fatalf("append diagnostics: %v", err)
			}

			ids, err := ListGenomeIDs(ctx, store)
			if err != nil {
				t.Fatalf("list genomes: %v", err)
			}
			if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
				t.Fatalf("unexpected genome ids %v", ids)
			}
			all, err := store.List(ctx, "")
			if err != nil || len(all) != 5 {
				t.Fatalf("expected every key, got %v err=%v", all, err)
			}
			none, err := store.List(ctx, "zzz/")
			if err != nil || len(none) != 0 {
				t.Fatalf("expected no keys, got %v err=%v", none, err)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]string{
		GenomeKey("g1"):       "genome",
		DiagnosticsKey("r"):   "diagnostics",
		bestGenomeKey:         "best_genome",
		"genome/with/slashes": "genome",
	}
	for key, want := range cases {
		if got := kindOf(key); got != want {
			t.Fatalf("kindOf(%q) = %q, want %q", key, got, want)
		}
	}
}
