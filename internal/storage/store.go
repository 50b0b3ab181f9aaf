// Package storage persists genomes, run diagnostics and records as
// versioned JSON payloads behind a small key-value store.
package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Store is a key-value store of encoded records. Get reports false when the
// key is absent. List returns the keys starting with prefix in ascending
// order.
type Store interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
}

const (
	genomePrefix      = "genome/"
	diagnosticsPrefix = "diagnostics/"
	bestGenomeKey     = "best_genome"
	highScoreKey      = "high_score"
)

func GenomeKey(id string) string {
	return genomePrefix + id
}

func DiagnosticsKey(runID string) string {
	return diagnosticsPrefix + runID
}

// kindOf names the record family of a key: the part before the first slash,
// or the whole key for singletons.
func kindOf(key string) string {
	kind, _, _ := strings.Cut(key, "/")
	return kind
}
