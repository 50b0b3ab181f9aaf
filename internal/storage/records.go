package storage

import (
	"context"
	"fmt"
	"strings"

	"pacsim/internal/model"
)

func SaveGenome(ctx context.Context, s Store, g model.Genome) error {
	if g.ID == "" {
		return fmt.Errorf("genome id is required")
	}
	g.VersionedRecord = Versioned()
	payload, err := EncodeGenome(g)
	if err != nil {
		return err
	}
	return s.Set(ctx, GenomeKey(g.ID), payload)
}

func LoadGenome(ctx context.Context, s Store, id string) (model.Genome, bool, error) {
	payload, ok, err := s.Get(ctx, GenomeKey(id))
	if err != nil || !ok {
		return model.Genome{}, false, err
	}
	genome, err := DecodeGenome(payload)
	if err != nil {
		return model.Genome{}, false, fmt.Errorf("decode genome %s: %w", id, err)
	}
	return genome, true, nil
}

// SaveBestGenome stores g and points the best-genome record at it. Within
// one run the record only moves to a fitter genome; a record written by an
// earlier run is always taken over. It reports whether the record was
// replaced.
func SaveBestGenome(ctx context.Context, s Store, g model.Genome, record model.BestGenomeRecord) (bool, error) {
	if err := SaveGenome(ctx, s, g); err != nil {
		return false, err
	}
	current, ok, err := loadBestRecord(ctx, s)
	if err != nil {
		return false, err
	}
	if ok && current.RunID == record.RunID && current.Fitness > record.Fitness {
		return false, nil
	}
	record.VersionedRecord = Versioned()
	record.GenomeID = g.ID
	payload, err := EncodeBestGenome(record)
	if err != nil {
		return false, err
	}
	if err := s.Set(ctx, bestGenomeKey, payload); err != nil {
		return false, err
	}
	return true, nil
}

func LoadBestGenome(ctx context.Context, s Store) (model.Genome, model.BestGenomeRecord, bool, error) {
	record, ok, err := loadBestRecord(ctx, s)
	if err != nil || !ok {
		return model.Genome{}, model.BestGenomeRecord{}, false, err
	}
	genome, ok, err := LoadGenome(ctx, s, record.GenomeID)
	if err != nil {
		return model.Genome{}, model.BestGenomeRecord{}, false, err
	}
	if !ok {
		return model.Genome{}, model.BestGenomeRecord{}, false, fmt.Errorf("best genome %s is missing", record.GenomeID)
	}
	return genome, record, true, nil
}

func loadBestRecord(ctx context.Context, s Store) (model.BestGenomeRecord, bool, error) {
	payload, ok, err := s.Get(ctx, bestGenomeKey)
	if err != nil || !ok {
		return model.BestGenomeRecord{}, false, err
	}
	record, err := DecodeBestGenome(payload)
	if err != nil {
		return model.BestGenomeRecord{}, false, fmt.Errorf("decode best genome record: %w", err)
	}
	return record, true, nil
}

// SaveHighScore records score when it beats the stored one and reports
// whether it did.
func SaveHighScore(ctx context.Context, s Store, score int, genomeID string) (bool, error) {
	current, ok, err := LoadHighScore(ctx, s)
	if err != nil {
		return false, err
	}
	if ok && current.Score >= score {
		return false, nil
	}
	payload, err := EncodeHighScore(model.HighScore{VersionedRecord: Versioned(), Score: score, GenomeID: genomeID})
	if err != nil {
		return false, err
	}
	if err := s.Set(ctx, highScoreKey, payload); err != nil {
		return false, err
	}
	return true, nil
}

func LoadHighScore(ctx context.Context, s Store) (model.HighScore, bool, error) {
	payload, ok, err := s.Get(ctx, highScoreKey)
	if err != nil || !ok {
		return model.HighScore{}, false, err
	}
	score, err := DecodeHighScore(payload)
	if err != nil {
		return model.HighScore{}, false, fmt.Errorf("decode high score: %w", err)
	}
	return score, true, nil
}

func SaveDiagnostics(ctx context.Context, s Store, runID string, diagnostics []model.GenerationDiagnostics) error {
	stamped := make([]model.GenerationDiagnostics, len(diagnostics))
	for i, d := range diagnostics {
		d.VersionedRecord = Versioned()
		d.RunID = runID
		stamped[i] = d
	}
	payload, err := EncodeGenerationDiagnostics(stamped)
	if err != nil {
		return err
	}
	return s.Set(ctx, DiagnosticsKey(runID), payload)
}

// AppendDiagnostics adds one generation to the run's stored history.
func AppendDiagnostics(ctx context.Context, s Store, runID string, d model.GenerationDiagnostics) error {
	history, _, err := LoadDiagnostics(ctx, s, runID)
	if err != nil {
		return err
	}
	return SaveDiagnostics(ctx, s, runID, append(history, d))
}

func LoadDiagnostics(ctx context.Context, s Store, runID string) ([]model.GenerationDiagnostics, bool, error) {
	payload, ok, err := s.Get(ctx, DiagnosticsKey(runID))
	if err != nil || !ok {
		return nil, false, err
	}
	diagnostics, err := DecodeGenerationDiagnostics(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode diagnostics %s: %w", runID, err)
	}
	return diagnostics, true, nil
}

// ListGenomeIDs returns the ids of every stored genome in ascending order.
func ListGenomeIDs(ctx context.Context, s Store) ([]string, error) {
	keys, err := s.List(ctx, genomePrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = strings.TrimPrefix(key, genomePrefix)
	}
	return ids, nil
}
