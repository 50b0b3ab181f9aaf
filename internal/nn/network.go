// Package nn evaluates genomes as feed-forward networks.
package nn

import (
	"errors"
	"fmt"

	"pacsim/internal/model"
)

var ErrInputSize = errors.New("input size mismatch")

// Forward evaluates every non-input neuron in genome order and returns the
// value of each neuron by id. Neurons present in inputByNeuron keep the
// supplied value.
func Forward(genome model.Genome, inputByNeuron map[string]float64) (map[string]float64, error) {
	values := make(map[string]float64, len(genome.Neurons))
	for neuronID, value := range inputByNeuron {
		values[neuronID] = value
	}

	incoming := make(map[string][]model.Synapse, len(genome.Neurons))
	for _, synapse := range genome.Synapses {
		if !synapse.Enabled {
			continue
		}
		incoming[synapse.To] = append(incoming[synapse.To], synapse)
	}

	for _, neuron := range genome.Neurons {
		if _, fixedInput := inputByNeuron[neuron.ID]; fixedInput {
			continue
		}

		total := neuron.Bias
		for _, synapse := range incoming[neuron.ID] {
			total += values[synapse.From] * synapse.Weight
		}

		activated, err := applyActivation(neuron.Activation, total)
		if err != nil {
			return nil, fmt.Errorf("neuron %s: %w", neuron.ID, err)
		}
		values[neuron.ID] = activated
	}

	return values, nil
}

// ForwardVector binds inputs to genome.InputIDs and reads the result from
// genome.OutputIDs.
func ForwardVector(genome model.Genome, inputs []float64) ([]float64, error) {
	if len(inputs) != len(genome.InputIDs) {
		return nil, fmt.Errorf("%w: got=%d want=%d", ErrInputSize, len(inputs), len(genome.InputIDs))
	}
	inputByNeuron := make(map[string]float64, len(inputs))
	for i, id := range genome.InputIDs {
		inputByNeuron[id] = inputs[i]
	}
	values, err := Forward(genome, inputByNeuron)
	if err != nil {
		return nil, err
	}
	outputs := make([]float64, len(genome.OutputIDs))
	for i, id := range genome.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}

func applyActivation(name string, x float64) (float64, error) {
	fn, err := GetActivation(name)
	if err != nil {
		return 0, fmt.Errorf("unsupported activation: %s", name)
	}
	return fn(x), nil
}
