// Package evo evolves populations of controller genomes by elite retention,
// parent selection and weight-level mutation.
package evo

import (
	"context"

	"pacsim/internal/model"
)

type Operator interface {
	Name() string
	Apply(ctx context.Context, genome model.Genome) (model.Genome, error)
}

// WeightedMutation pairs an operator with its relative pick weight.
type WeightedMutation struct {
	Operator Operator
	Weight   float64
}
