package evo

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"pacsim/internal/genotype"
	"pacsim/internal/model"
	"pacsim/internal/nn"
)

var (
	ErrNoSynapses       = errors.New("genome has no synapses")
	ErrNoNeurons        = errors.New("genome has no mutable neurons")
	ErrNoMutationChoice = errors.New("no mutation choice available")
)

const (
	DefaultWeightDelta = 1.0
	DefaultBiasDelta   = 0.5
)

// PerturbWeightsProportional perturbs each synapse with probability
// 1/sqrt(synapse count) by a uniform delta in [-MaxDelta, MaxDelta]. At
// least one synapse is always perturbed.
type PerturbWeightsProportional struct {
	Rand     *rand.Rand
	MaxDelta float64
}

func (o *PerturbWeightsProportional) Name() string {
	return "perturb_weights_proportional"
}

func (o *PerturbWeightsProportional) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	if len(genome.Synapses) == 0 {
		return model.Genome{}, ErrNoSynapses
	}
	if o == nil || o.Rand == nil {
		return model.Genome{}, errors.New("random source is required")
	}
	if o.MaxDelta <= 0 {
		return model.Genome{}, errors.New("max delta must be > 0")
	}

	mutated := genotype.CloneGenome(genome)
	mp := 1 / math.Sqrt(float64(len(mutated.Synapses)))
	mutatedCount := 0
	for i := range mutated.Synapses {
		if o.Rand.Float64() >= mp {
			continue
		}
		mutated.Synapses[i].Weight += centeredDelta(o.Rand, o.MaxDelta)
		mutatedCount++
	}
	if mutatedCount == 0 {
		idx := o.Rand.Intn(len(mutated.Synapses))
		mutated.Synapses[idx].Weight += centeredDelta(o.Rand, o.MaxDelta)
	}
	return mutated, nil
}

// PerturbRandomBias shifts the bias of one non-input neuron.
type PerturbRandomBias struct {
	Rand     *rand.Rand
	MaxDelta float64
}

func (o *PerturbRandomBias) Name() string {
	return "perturb_random_bias"
}

func (o *PerturbRandomBias) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	candidates := computeNeurons(genome)
	if len(candidates) == 0 {
		return model.Genome{}, ErrNoNeurons
	}
	if o == nil || o.Rand == nil {
		return model.Genome{}, errors.New("random source is required")
	}
	if o.MaxDelta <= 0 {
		return model.Genome{}, errors.New("max delta must be > 0")
	}

	idx := candidates[o.Rand.Intn(len(candidates))]
	mutated := genotype.CloneGenome(genome)
	mutated.Neurons[idx].Bias += centeredDelta(o.Rand, o.MaxDelta)
	return mutated, nil
}

// ChangeRandomActivation swaps the activation of one non-input neuron for a
// different one from Activations, or from every registered activation when
// Activations is empty.
type ChangeRandomActivation struct {
	Rand        *rand.Rand
	Activations []string
}

func (o *ChangeRandomActivation) Name() string {
	return "change_random_activation"
}

func (o *ChangeRandomActivation) Apply(_ context.Context, genome model.Genome) (model.Genome, error) {
	candidates := computeNeurons(genome)
	if len(candidates) == 0 {
		return model.Genome{}, ErrNoNeurons
	}
	if o == nil || o.Rand == nil {
		return model.Genome{}, errors.New("random source is required")
	}
	activations := o.Activations
	if len(activations) == 0 {
		activations = nn.ListActivations()
	}

	idx := candidates[o.Rand.Intn(len(candidates))]
	current := genome.Neurons[idx].Activation
	choices := make([]string, 0, len(activations))
	for _, name := range activations {
		if name != "" && name != current {
			choices = append(choices, name)
		}
	}
	if len(choices) == 0 {
		return model.Genome{}, ErrNoMutationChoice
	}

	mutated := genotype.CloneGenome(genome)
	mutated.Neurons[idx].Activation = choices[o.Rand.Intn(len(choices))]
	return mutated, nil
}

// DefaultMutations is the weighted operator mix used when none is
// configured: mostly weight perturbation, some bias drift and the odd
// activation swap.
func DefaultMutations(rng *rand.Rand) []WeightedMutation {
	return []WeightedMutation{
		{Operator: &PerturbWeightsProportional{Rand: rng, MaxDelta: DefaultWeightDelta}, Weight: 0.7},
		{Operator: &PerturbRandomBias{Rand: rng, MaxDelta: DefaultBiasDelta}, Weight: 0.2},
		{Operator: &ChangeRandomActivation{Rand: rng}, Weight: 0.1},
	}
}

// computeNeurons returns the indexes of neurons whose value is computed
// rather than bound to an input.
func computeNeurons(genome model.Genome) []int {
	inputs := make(map[string]struct{}, len(genome.InputIDs))
	for _, id := range genome.InputIDs {
		inputs[id] = struct{}{}
	}
	out := make([]int, 0, len(genome.Neurons))
	for i, n := range genome.Neurons {
		if _, ok := inputs[n.ID]; !ok {
			out = append(out, i)
		}
	}
	return out
}

func centeredDelta(rng *rand.Rand, maxDelta float64) float64 {
	return (rng.Float64()*2 - 1) * maxDelta
}
