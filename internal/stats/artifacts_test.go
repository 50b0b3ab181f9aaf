package stats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pacsim/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			Scape:          "corridor",
			PopulationSize: 4,
			Hidden:         []int{6},
			Generations:    2,
			Seed:           1,
			Workers:        2,
			EliteCount:     1,
			Selection:      "elite",
		},
		Diagnostics: []model.GenerationDiagnostics{
			{RunID: runID, Generation: 1, BestFitness: 12.5, MeanFitness: 3, PelletsEaten: 1},
			{RunID: runID, Generation: 2, BestFitness: 40, MeanFitness: 10.25, PelletsEaten: 2},
		},
		Lineage:          []LineageEntry{{GenomeID: "g1", Generation: 1, Operation: "elite_clone"}},
		BestGenome:       &model.Genome{ID: "g1"},
		FinalBestFitness: 40,
		HighScore:        2,
	}
}

func TestWriteAndReadRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range []string{configFile, diagnosticsFile, seriesFile, lineageFile, bestGenomeFile} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadRunConfig(baseDir, "run-1")
	if err != nil || !ok || cfg.Scape != "corridor" || len(cfg.Hidden) != 1 {
		t.Fatalf("read config: ok=%v err=%v cfg=%+v", ok, err, cfg)
	}
	diagnostics, ok, err := ReadDiagnostics(baseDir, "run-1")
	if err != nil || !ok || len(diagnostics) != 2 || diagnostics[1].BestFitness != 40 {
		t.Fatalf("read diagnostics: ok=%v err=%v %+v", ok, err, diagnostics)
	}
	series, ok, err := ReadFitnessSeries(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read series: ok=%v err=%v", ok, err)
	}
	if len(series) != 2 || series[0] != 12.5 || series[1] != 40 {
		t.Fatalf("unexpected series %v", series)
	}

	if _, ok, err := ReadRunConfig(baseDir, "missing"); ok || err != nil {
		t.Fatalf("expected missing run, ok=%v err=%v", ok, err)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); !errors.Is(err, ErrRunIDRequired) {
		t.Fatalf("expected run id error, got %v", err)
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	artifacts := sampleArtifacts("run-2")
	artifacts.BestGenome = nil
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	dst, err := ExportRunArtifacts(baseDir, "run-2", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, file := range []string{configFile, diagnosticsFile, seriesFile, lineageFile} {
		if _, err := os.Stat(filepath.Join(dst, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, bestGenomeFile)); !os.IsNotExist(err) {
		t.Fatalf("best genome should not be exported when absent, err=%v", err)
	}
	if _, err := ExportRunArtifacts(baseDir, "missing", outDir); err == nil {
		t.Fatal("expected missing run error")
	}
}

func TestRunIndexOrdersNewestFirst(t *testing.T) {
	baseDir := t.TempDir()
	entries, err := ListRunIndex(baseDir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty index, got %v err=%v", entries, err)
	}

	for _, entry := range []RunIndexEntry{
		{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{RunID: "c", CreatedAtUTC: "2026-01-02T00:00:00Z"},
	} {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", HighScore: 9}); err != nil {
		t.Fatalf("replace a: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "old", CreatedAtUTC: "2025-12-31T00:00:00Z"}); err != nil {
		t.Fatalf("append old: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{}
	for _, e := range entries {
		got = append(got, e.RunID)
	}
	if len(got) != 4 || got[0] != "c" || got[1] != "b" || got[2] != "a" || got[3] != "old" {
		t.Fatalf("unexpected order %v", got)
	}
	if entries[2].HighScore != 9 {
		t.Fatalf("expected replaced entry, got %+v", entries[2])
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{}); !errors.Is(err, ErrRunIDRequired) {
		t.Fatalf("expected run id error, got %v", err)
	}
}
