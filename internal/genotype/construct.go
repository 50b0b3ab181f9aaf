// Package genotype builds and copies controller genomes.
package genotype

import (
	"errors"
	"fmt"
	"math/rand"

	"pacsim/internal/model"
	"pacsim/internal/nn"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1

	DefaultHiddenActivation = "tanh"
	DefaultOutputActivation = "identity"
)

var ErrInvalidShape = errors.New("invalid network shape")

// ConstructLayered builds a fully connected feed-forward genome with the
// given input count, hidden layer widths and output count. Weights and
// biases are drawn from rng in [-0.5, 0.5).
func ConstructLayered(inputs int, hidden []int, outputs int, rng *rand.Rand) (model.Genome, error) {
	if inputs <= 0 || outputs <= 0 {
		return model.Genome{}, fmt.Errorf("%w: inputs=%d outputs=%d", ErrInvalidShape, inputs, outputs)
	}
	for i, width := range hidden {
		if width <= 0 {
			return model.Genome{}, fmt.Errorf("%w: hidden layer %d has width %d", ErrInvalidShape, i, width)
		}
	}
	for _, name := range []string{DefaultHiddenActivation, DefaultOutputActivation} {
		if _, err := nn.GetActivation(name); err != nil {
			return model.Genome{}, err
		}
	}
	rng = ensureRNG(rng)

	genome := model.Genome{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              NewGenomeID(rng),
	}

	previous := make([]string, inputs)
	for i := range previous {
		id := fmt.Sprintf("i%d", i)
		previous[i] = id
		genome.InputIDs = append(genome.InputIDs, id)
		genome.Neurons = append(genome.Neurons, model.Neuron{ID: id, Activation: "identity"})
	}

	layers := append(append([]int(nil), hidden...), outputs)
	for l, width := range layers {
		layer := l + 1
		last := l == len(layers)-1
		current := make([]string, width)
		for n := 0; n < width; n++ {
			id := fmt.Sprintf("h%d_%d", layer, n)
			activation := DefaultHiddenActivation
			if last {
				id = fmt.Sprintf("o%d", n)
				activation = DefaultOutputActivation
				genome.OutputIDs = append(genome.OutputIDs, id)
			}
			current[n] = id
			genome.Neurons = append(genome.Neurons, model.Neuron{
				ID:         id,
				Layer:      layer,
				Activation: activation,
				Bias:       randomCentered(rng),
			})
			for _, from := range previous {
				genome.Synapses = append(genome.Synapses, model.Synapse{
					ID:      fmt.Sprintf("%s->%s", from, id),
					From:    from,
					To:      id,
					Weight:  randomCentered(rng),
					Enabled: true,
				})
			}
		}
		previous = current
	}
	return genome, nil
}
