package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"pacsim/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Versioned stamps v with the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeGenome(g model.Genome) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGenome(data []byte) (model.Genome, error) {
	var genome model.Genome
	if err := json.Unmarshal(data, &genome); err != nil {
		return model.Genome{}, err
	}
	if err := checkVersion(genome.VersionedRecord); err != nil {
		return model.Genome{}, err
	}
	return genome, nil
}

func EncodeBestGenome(r model.BestGenomeRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeBestGenome(data []byte) (model.BestGenomeRecord, error) {
	var record model.BestGenomeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.BestGenomeRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.BestGenomeRecord{}, err
	}
	return record, nil
}

func EncodeHighScore(h model.HighScore) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeHighScore(data []byte) (model.HighScore, error) {
	var score model.HighScore
	if err := json.Unmarshal(data, &score); err != nil {
		return model.HighScore{}, err
	}
	if err := checkVersion(score.VersionedRecord); err != nil {
		return model.HighScore{}, err
	}
	return score, nil
}

func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	for i, d := range diagnostics {
		if err := checkVersion(d.VersionedRecord); err != nil {
			return nil, fmt.Errorf("generation record %d: %w", i, err)
		}
	}
	return diagnostics, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
