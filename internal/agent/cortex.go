// Package agent wraps a genome as a controller that maps sensor vectors to
// action vectors.
package agent

import (
	"context"
	"fmt"

	"pacsim/internal/model"
	"pacsim/internal/nn"
)

type Cortex struct {
	genome  model.Genome
	fitness float64
}

func NewCortex(genome model.Genome) (*Cortex, error) {
	if genome.ID == "" {
		return nil, fmt.Errorf("genome id is required")
	}
	if len(genome.InputIDs) == 0 {
		return nil, fmt.Errorf("input neuron ids are required")
	}
	if len(genome.OutputIDs) == 0 {
		return nil, fmt.Errorf("output neuron ids are required")
	}
	for _, neuron := range genome.Neurons {
		if _, err := nn.GetActivation(neuron.Activation); err != nil {
			return nil, fmt.Errorf("neuron %s: %w", neuron.ID, err)
		}
	}
	return &Cortex{genome: genome}, nil
}

func (c *Cortex) ID() string {
	return c.genome.ID
}

// Genome returns the wrapped genome. Callers must not mutate its slices.
func (c *Cortex) Genome() model.Genome {
	return c.genome
}

func (c *Cortex) Fitness() float64 {
	return c.fitness
}

func (c *Cortex) SetFitness(f float64) {
	c.fitness = f
}

// Propagate runs one forward pass.
func (c *Cortex) Propagate(inputs []float64) ([]float64, error) {
	return nn.ForwardVector(c.genome, inputs)
}

// RunStep is Propagate guarded by ctx.
func (c *Cortex) RunStep(ctx context.Context, inputs []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Propagate(inputs)
}
