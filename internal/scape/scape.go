// Package scape defines evaluation environments for controller genomes.
package scape

import "context"

type Fitness float64

// Trace carries per-episode facts next to the fitness, keyed by the
// Trace* names.
type Trace map[string]any

const (
	TracePellets = "pellets_eaten"
	TraceScore   = "score"
	TraceTicks   = "ticks"
	TraceStatus  = "status"
)

// Int reads a numeric entry; JSON-decoded traces hold float64.
func (t Trace) Int(key string) int {
	switch v := t[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (t Trace) String(key string) string {
	s, _ := t[key].(string)
	return s
}

type Agent interface {
	ID() string
}

// PropagateAgent maps one sensor vector to one action vector.
type PropagateAgent interface {
	Agent
	Propagate(inputs []float64) ([]float64, error)
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}
