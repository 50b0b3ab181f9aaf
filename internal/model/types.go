// Package model holds the persistent records shared by the evolution and
// storage layers.
package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is a feed-forward controller network. Neurons are stored in
// evaluation order: every neuron appears after the sources of its enabled
// synapses. InputIDs and OutputIDs name the neurons bound to the sensor
// vector and the action vector, in order.
type Genome struct {
	VersionedRecord
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Neurons   []Neuron  `json:"neurons"`
	Synapses  []Synapse `json:"synapses"`
	InputIDs  []string  `json:"input_ids"`
	OutputIDs []string  `json:"output_ids"`
}

type Neuron struct {
	ID         string  `json:"id"`
	Layer      int     `json:"layer"`
	Activation string  `json:"activation"`
	Bias       float64 `json:"bias"`
}

type Synapse struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// GenerationDiagnostics summarizes the fitness distribution of one
// evaluated generation.
type GenerationDiagnostics struct {
	VersionedRecord
	RunID        string  `json:"run_id"`
	Generation   int     `json:"generation"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	StdFitness   float64 `json:"std_fitness"`
	MinFitness   float64 `json:"min_fitness"`
	BestGenomeID string  `json:"best_genome_id"`
	PelletsEaten int     `json:"pellets_eaten"`
	MeanTicks    float64 `json:"mean_ticks"`
	LongestTicks int     `json:"longest_ticks"`
}

// BestGenomeRecord points at the best genome seen across runs.
type BestGenomeRecord struct {
	VersionedRecord
	GenomeID   string  `json:"genome_id"`
	Fitness    float64 `json:"fitness"`
	RunID      string  `json:"run_id"`
	Generation int     `json:"generation"`
}

// HighScore is the most pellets a controller has eaten in one episode.
type HighScore struct {
	VersionedRecord
	Score    int    `json:"score"`
	GenomeID string `json:"genome_id"`
}
